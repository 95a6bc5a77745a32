package cmd

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type getArgs struct {
	output string
}

func NewGetCmd(c *Context) *cobra.Command {
	args := &getArgs{}
	subc := &cobra.Command{
		Use:   "get <remote>",
		Short: "Download a remote file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			return onRunGet(cmd.Context(), c, argv[0], args)
		},
	}
	subc.Flags().StringVarP(&args.output, "output", "o", "", "local file to save, default to the remote file name")
	return subc
}

func onRunGet(ctx context.Context, c *Context, remote string, args *getArgs) error {
	link, err := c.link(remote)
	if err != nil {
		return err
	}
	dst := args.output
	if len(dst) == 0 {
		dst = path.Base(remote)
	}
	start := time.Now()
	if err := c.DAV.DownloadFile(ctx, link, dst); err != nil {
		return fmt.Errorf("download file failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("download file succ", zap.String("link", link), zap.String("dst", dst), zap.Duration("cost", time.Since(start)))
	return nil
}

func init() {
	register(NewGetCmd)
}
