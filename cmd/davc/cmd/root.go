package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/davclient/cmd/davc/config"
	"github.com/xxxsen/davclient/davc"
	"github.com/xxxsen/davclient/davc/client"
)

const (
	defaultConfigFileEnv = "DAVC_CONFIG"
)

var cmds []CreateFunc

type Context struct {
	DAV    *davc.DavClient
	Client client.IClient
	Config *config.Config
}

type CreateFunc func(ctx *Context) *cobra.Command

func register(cr CreateFunc) {
	cmds = append(cmds, cr)
}

func loadConfig(cfgs []string) (*config.Config, error) {
	var lastErr error = fmt.Errorf("no config file specified")
	for _, cfg := range cfgs {
		if len(cfg) == 0 {
			continue
		}
		c, err := config.Parse(cfg)
		if err != nil {
			lastErr = err
			continue
		}
		return c, nil
	}
	return nil, fmt.Errorf("no valid config file found, last err:%w", lastErr)
}

func initContext(ctx *Context, cfgs []string) error {
	c, err := loadConfig(cfgs)
	if err != nil {
		return err
	}
	ctx.Config = c
	logger.Init("", c.LogLevel, 0, 0, 0, true)
	hc := &http.Client{
		Timeout: time.Duration(c.Timeout) * time.Second,
	}
	cli, err := client.New(
		client.WithAuth(c.Username, c.Password),
		client.WithHTTPClient(hc),
		client.WithUserAgent(c.UserAgent),
	)
	if err != nil {
		return err
	}
	ctx.Client = cli
	dav, err := davc.New(
		davc.WithClient(cli),
		davc.WithThread(c.Thread),
		davc.WithRetry(c.RetryTimes, time.Duration(c.RetryInterval)*time.Millisecond),
	)
	if err != nil {
		return err
	}
	ctx.DAV = dav
	return nil
}

func NewRoot() *cobra.Command {
	var configFile string
	ctx := &Context{}
	var rootCmd = &cobra.Command{
		Use:           "davc",
		Short:         "WebDAV CLI tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, cr := range cmds {
		rootCmd.AddCommand(cr(ctx))
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		envConfigFile, _ := os.LookupEnv(defaultConfigFileEnv)
		return initContext(ctx, []string{configFile, envConfigFile, "/etc/davc/davc_config.json"})
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
	return rootCmd
}
