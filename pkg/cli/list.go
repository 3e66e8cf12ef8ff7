package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/tagpack/pkg/cli/config"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdList() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "Show the refs a package run would archive",
		Flags:   repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			kind, err := repoCfg.Kind()
			if err != nil {
				return err
			}
			matcher, err := repoCfg.Matcher()
			if err != nil {
				return err
			}
			repo, err := repoCfg.Open(ctx)
			if err != nil {
				return err
			}

			refs, err := repo.ListRefs(ctx, kind)
			if err != nil {
				return err
			}

			w := stdout(c)
			matched := matcher.Filter(refs)
			if len(matched) == 0 {
				_, _ = color.New(color.FgYellow).Fprintf(w, "no %s match %s\n", kind, matcher)
				return nil
			}

			name := color.New(color.FgCyan, color.Bold)
			for _, ref := range matched {
				_, _ = name.Fprintf(w, "%-20s", ref)
				if v, err := model.ParseVersion(ref); err == nil {
					_, _ = fmt.Fprintf(w, " core=%s major=%s patch=%s", v.Core, v.Major, v.Patch)
					if v.Extra != "" {
						_, _ = fmt.Fprintf(w, " extra=%s", v.Extra)
					}
				}
				_, _ = fmt.Fprintln(w)
			}
			return nil
		},
	}
}
