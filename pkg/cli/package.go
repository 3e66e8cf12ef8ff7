package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/tagpack/pkg/cli/config"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdPackage(project *config.Project) *cli.Command {
	cfg := &packagerConfig{project: project}

	return &cli.Command{
		Name:    "package",
		Aliases: []string{"p"},
		Usage:   "Archive every matching ref and write its release descriptor",
		Flags:   cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			packager, repo, stores, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := stores.Close(); err != nil {
					ctxlog.From(ctx).Warn("Failed to close storage", "error", err)
				}
			}()

			ctxlog.From(ctx).Info("Packaging repository", "dir", repo.Dir())

			results, err := packager.Run(ctx)
			printResults(stdout(c), results)
			return err
		},
	}
}

func printResults(w io.Writer, results []*model.ReleaseResult) {
	if len(results) == 0 {
		_, _ = color.New(color.FgYellow).Fprintln(w, "no releases packaged")
		return
	}

	ok := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.Faint)
	for _, r := range results {
		_, _ = ok.Fprintf(w, "%-16s", r.Version)
		_, _ = fmt.Fprintf(w, " %s  %s\n", r.ArchiveKey, r.DescriptorKey)
		_, _ = dim.Fprintf(w, "%16s md5:%s size:%d\n", "", r.MD5, r.Size)
	}
}
