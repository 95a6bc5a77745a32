package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func NewRmCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <remote>",
		Short: "Delete a remote file or collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := cmd.Context()
			link, err := c.link(argv[0])
			if err != nil {
				return err
			}
			if _, err := c.Client.Delete(ctx, link); err != nil {
				return fmt.Errorf("delete failed, err:%w", err)
			}
			logutil.GetLogger(ctx).Info("delete succ", zap.String("link", link))
			return nil
		},
	}
}

func NewMkdirCmd(c *Context) *cobra.Command {
	var parents bool
	subc := &cobra.Command{
		Use:   "mkdir <remote>",
		Short: "Create a remote collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			return onRunMkdir(cmd.Context(), c, argv[0], parents)
		},
	}
	subc.Flags().BoolVarP(&parents, "parents", "p", false, "create parent collections as needed")
	return subc
}

func onRunMkdir(ctx context.Context, c *Context, remote string, parents bool) error {
	link, err := c.link(remote)
	if err != nil {
		return err
	}
	if parents {
		err = c.DAV.MkcolAll(ctx, link)
	} else {
		_, err = c.Client.Mkcol(ctx, link)
	}
	if err != nil {
		return fmt.Errorf("mkcol failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("mkcol succ", zap.String("link", link))
	return nil
}

func NewMvCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <src> <dst>",
		Short: "Move or rename a remote resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := cmd.Context()
			src, err := c.link(argv[0])
			if err != nil {
				return err
			}
			dst, err := c.link(argv[1])
			if err != nil {
				return err
			}
			if _, err := c.Client.Move(ctx, src, dst); err != nil {
				return fmt.Errorf("move failed, err:%w", err)
			}
			logutil.GetLogger(ctx).Info("move succ", zap.String("src", src), zap.String("dst", dst))
			return nil
		},
	}
}

func NewUnzipCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "unzip <remote>",
		Short: "Ask the server to extract a remote zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := cmd.Context()
			link, err := c.link(argv[0])
			if err != nil {
				return err
			}
			if _, err := c.Client.Unzip(ctx, link); err != nil {
				return fmt.Errorf("unzip failed, err:%w", err)
			}
			logutil.GetLogger(ctx).Info("unzip succ", zap.String("link", link))
			return nil
		},
	}
}

func init() {
	register(NewRmCmd)
	register(NewMkdirCmd)
	register(NewMvCmd)
	register(NewUnzipCmd)
}
