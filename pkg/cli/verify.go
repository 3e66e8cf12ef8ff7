package cli

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdVerify() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check release descriptors against the schema update clients expect",
		ArgsUsage: "FILE...",
		Action: func(ctx context.Context, c *cli.Command) error {
			files := c.Args().Slice()
			if len(files) == 0 {
				return goerr.New("no descriptor given")
			}

			w := stdout(c)
			pass := color.New(color.FgGreen)
			fail := color.New(color.FgRed, color.Bold)

			var failed int
			for _, path := range files {
				if err := verifyFile(path); err != nil {
					failed++
					_, _ = fail.Fprintf(w, "FAIL %s: %v\n", path, err)
					continue
				}
				_, _ = pass.Fprintf(w, "ok   %s\n", path)
			}

			if failed > 0 {
				return goerr.New("invalid descriptors", goerr.V("failed", failed), goerr.V("total", len(files)))
			}
			return nil
		},
	}
}

func verifyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return goerr.Wrap(err, "failed to open descriptor", goerr.V("path", path))
	}
	defer f.Close()

	return model.ValidateDescriptor(f)
}
