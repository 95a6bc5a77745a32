package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davclient/davc"
	"go.uber.org/zap"
)

type putArgs struct {
	files   []string
	dir     string
	parents bool
}

func NewPutCmd(c *Context) *cobra.Command {
	args := &putArgs{}
	subc := &cobra.Command{
		Use:   "put",
		Short: "Upload local files into a remote collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return onRunPut(cmd.Context(), c, args)
		},
	}
	subc.Flags().StringSliceVarP(&args.files, "file", "f", nil, "local file to upload, can be repeated")
	subc.Flags().StringVarP(&args.dir, "dir", "d", "/", "remote collection")
	subc.Flags().BoolVarP(&args.parents, "parents", "p", false, "create remote collection if missing")
	return subc
}

func onRunPut(ctx context.Context, c *Context, args *putArgs) error {
	if len(args.files) == 0 {
		return fmt.Errorf("no upload file found")
	}
	dir := args.dir
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	if args.parents {
		link, err := c.link(dir)
		if err != nil {
			return err
		}
		if err := c.DAV.MkcolAll(ctx, link); err != nil {
			return err
		}
	}
	items := make([]*davc.UploadItem, 0, len(args.files))
	for _, f := range args.files {
		dst, err := c.link(dir + filepath.Base(f))
		if err != nil {
			return err
		}
		items = append(items, &davc.UploadItem{Src: f, Dst: dst})
	}
	start := time.Now()
	if err := c.DAV.UploadFiles(ctx, items); err != nil {
		return fmt.Errorf("upload files failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("upload files succ", zap.Int("count", len(items)), zap.String("dir", dir), zap.Duration("cost", time.Since(start)))
	return nil
}

func init() {
	register(NewPutCmd)
}
