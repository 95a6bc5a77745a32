package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/davclient/davc/client"
	"github.com/xxxsen/davclient/webdav"
)

type lsArgs struct {
	depth string
	all   bool
}

func NewLsCmd(c *Context) *cobra.Command {
	args := &lsArgs{}
	subc := &cobra.Command{
		Use:   "ls [remote]",
		Short: "List remote collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			remote := "/"
			if len(argv) > 0 {
				remote = argv[0]
			}
			return onRunLs(cmd.Context(), c, cmd.OutOrStdout(), remote, args)
		},
	}
	subc.Flags().StringVarP(&args.depth, "depth", "d", client.DepthOne, "propfind depth, 0/1/infinity")
	subc.Flags().BoolVarP(&args.all, "all", "a", false, "also print the listed collection itself")
	return subc
}

func onRunLs(ctx context.Context, c *Context, w io.Writer, remote string, args *lsArgs) error {
	link, err := c.link(remote)
	if err != nil {
		return err
	}
	ents, err := c.Client.ListEntries(ctx, link, args.depth)
	if err != nil {
		return fmt.Errorf("list failed, link:%s, err:%w", link, err)
	}
	if !args.all && len(ents) > 0 {
		ents = ents[1:]
	}
	return printEntries(w, ents)
}

func printEntries(w io.Writer, ents []*webdav.ResourceEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, ent := range ents {
		kind := "-"
		size := "-"
		if ent.IsCollection() {
			kind = "d"
		} else if sz, ok := ent.ContentLength(); ok {
			size = humanize.IBytes(sz)
		}
		mtime := "-"
		if t, ok := ent.LastModified(); ok {
			mtime = t.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", kind, size, mtime, ent.Href())
	}
	return tw.Flush()
}

func init() {
	register(NewLsCmd)
}
