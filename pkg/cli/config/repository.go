package config

import (
	"context"

	"github.com/m-mizutani/tagpack/pkg/domain/model"
	"github.com/m-mizutani/tagpack/pkg/infra/git"
	"github.com/urfave/cli/v3"
)

// Repository holds the working tree and which of its refs are releases
type Repository struct {
	Dir        string
	RefKind    string
	RefPattern string
	Mainline   string
	InfoFile   string
}

// Flags returns CLI flags for repository configuration
func (c *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repo-dir",
			Aliases:     []string{"C"},
			Usage:       "Git working tree to package",
			Value:       ".",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("TAGPACK_REPO_DIR"),
		},
		&cli.StringFlag{
			Name:        "ref-kind",
			Usage:       "Refs to package (branches, tags, all)",
			Value:       string(model.RefKindBranches),
			Destination: &c.RefKind,
			Sources:     cli.EnvVars("TAGPACK_REF_KIND"),
		},
		&cli.StringFlag{
			Name:        "ref-pattern",
			Usage:       "Regular expression a ref name must match to be packaged",
			Value:       model.DefaultRefPattern,
			Destination: &c.RefPattern,
			Sources:     cli.EnvVars("TAGPACK_REF_PATTERN"),
		},
		&cli.StringFlag{
			Name:        "mainline",
			Usage:       "Ref checked out after each release (default: the ref checked out at start)",
			Destination: &c.Mainline,
			Sources:     cli.EnvVars("TAGPACK_MAINLINE"),
		},
		&cli.StringFlag{
			Name:        "info-file",
			Usage:       "Module info file (default: first *.info or *.info.yml at the top level)",
			Destination: &c.InfoFile,
			Sources:     cli.EnvVars("TAGPACK_INFO_FILE"),
		},
	}
}

// Kind validates and returns the configured ref kind
func (c *Repository) Kind() (model.RefKind, error) {
	kind := model.RefKind(c.RefKind)
	if err := kind.Validate(); err != nil {
		return "", err
	}
	return kind, nil
}

// Matcher compiles the configured ref pattern
func (c *Repository) Matcher() (*model.RefMatcher, error) {
	return model.NewRefMatcher(c.RefPattern)
}

// Open returns a git client for the configured working tree
func (c *Repository) Open(ctx context.Context) (*git.Client, error) {
	return git.New(ctx, c.Dir)
}
