package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/cli/config"
	"github.com/m-mizutani/tagpack/pkg/infra/git"
	"github.com/m-mizutani/tagpack/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// packagerConfig gathers every setting a packaging run needs
type packagerConfig struct {
	repo    config.Repository
	release config.Release
	storage config.Storage
	slack   config.Slack
	project *config.Project
}

func (c *packagerConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, c.repo.Flags()...)
	flags = append(flags, c.release.Flags()...)
	flags = append(flags, c.storage.Flags()...)
	flags = append(flags, c.slack.Flags()...)
	return flags
}

// build opens the repository and stores and returns a packager over them. The
// caller closes the returned stores.
func (c *packagerConfig) build(ctx context.Context) (*usecase.Packager, *git.Client, *config.Stores, error) {
	pf, err := c.project.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	kind, err := c.repo.Kind()
	if err != nil {
		return nil, nil, nil, err
	}
	matcher, err := c.repo.Matcher()
	if err != nil {
		return nil, nil, nil, err
	}
	indent, err := c.release.IndentString()
	if err != nil {
		return nil, nil, nil, err
	}

	repo, err := c.repo.Open(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	stores, err := c.storage.Configure(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []usecase.PackagerOption{
		usecase.WithRefKind(kind),
		usecase.WithRefMatcher(matcher),
		usecase.WithMainline(c.repo.Mainline),
		usecase.WithInfoFile(c.repo.InfoFile),
		usecase.WithReleaseBaseURL(c.release.ReleaseBaseURL),
		usecase.WithDownloadBaseURL(c.release.DownloadBaseURL),
		usecase.WithProjectLink(firstNonEmpty(c.release.ProjectLink, pf.Link)),
		usecase.WithCreator(firstNonEmpty(c.release.Creator, pf.Creator)),
		usecase.WithProjectType(pf.Type),
		usecase.WithStatus(pf.Status),
		usecase.WithTerms(pf.Terms, pf.ReleaseTerms),
		usecase.WithIndent(indent),
	}

	notifier, err := c.slack.Configure()
	if err != nil {
		_ = stores.Close()
		return nil, nil, nil, err
	}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
	}

	packager, err := usecase.NewPackager(repo, stores.Archives, stores.Descriptors, opts...)
	if err != nil {
		_ = stores.Close()
		return nil, nil, nil, goerr.Wrap(err, "failed to create packager")
	}

	return packager, repo, stores, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
