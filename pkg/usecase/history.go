package usecase

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/interfaces"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

// History serves the archives and descriptors a Packager has published
type History struct {
	archives    interfaces.Store
	descriptors interfaces.Store
}

// NewHistory creates a History reading from the given stores
func NewHistory(archives, descriptors interfaces.Store) *History {
	return &History{
		archives:    archives,
		descriptors: descriptors,
	}
}

type candidate struct {
	key     string
	data    []byte
	version *semver.Version
	date    int64
}

// newer reports whether c should be served before other
func (c *candidate) newer(other *candidate) bool {
	switch {
	case c.version != nil && other.version != nil:
		if cmp := c.version.Compare(other.version); cmp != 0 {
			return cmp > 0
		}
	case c.version != nil:
		return true
	case other.version != nil:
		return false
	}
	return c.date > other.date
}

// Lookup returns the stored descriptor of the newest release of project for core
func (h *History) Lookup(ctx context.Context, project, core string) ([]byte, error) {
	if err := validateSegment(project); err != nil {
		return nil, err
	}
	if err := validateSegment(core); err != nil {
		return nil, err
	}

	logger := ctxlog.From(ctx)

	keys, err := h.descriptors.List(ctx, project+"/")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list descriptors", goerr.V("project", project))
	}

	var best *candidate
	for _, key := range keys {
		if !strings.HasSuffix(key, ".xml") {
			continue
		}

		c, err := h.load(ctx, key)
		if err != nil {
			return nil, err
		}
		summary, err := model.DecodeDescriptorSummary(bytes.NewReader(c.data))
		if err != nil {
			logger.Warn("Skipping unreadable descriptor", "key", key, "error", err)
			continue
		}
		if summary.APIVersion != core || len(summary.Releases) == 0 {
			continue
		}

		release := summary.Releases[0]
		c.date = release.Date
		if v, err := model.ParseVersion(release.Version); err == nil {
			if sv, err := v.SemVer(); err == nil {
				c.version = sv
			}
		}

		if best == nil || c.newer(best) {
			best = c
		}
	}

	if best == nil {
		return nil, goerr.Wrap(model.ErrNotFound, "no release for core",
			goerr.V("project", project),
			goerr.V("core", core),
		)
	}

	logger.Debug("Serving release history", "project", project, "core", core, "key", best.key)
	return best.data, nil
}

// OpenArchive opens a published archive of project
func (h *History) OpenArchive(ctx context.Context, project, file string) (io.ReadCloser, error) {
	if err := validateSegment(project); err != nil {
		return nil, err
	}
	if err := validateSegment(file); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(file, "."+model.DefaultArchiveType) {
		return nil, goerr.Wrap(model.ErrNotFound, "not an archive", goerr.V("file", file))
	}

	rc, err := h.archives.Get(ctx, project+"/"+file)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open archive",
			goerr.V("project", project),
			goerr.V("file", file),
		)
	}
	return rc, nil
}

func (h *History) load(ctx context.Context, key string) (*candidate, error) {
	rc, err := h.descriptors.Get(ctx, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open descriptor", goerr.V("key", key))
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read descriptor", goerr.V("key", key))
	}
	return &candidate{key: key, data: data}, nil
}

// validateSegment rejects request path segments that could escape a project
func validateSegment(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, "/\\") {
		return goerr.Wrap(model.ErrNotFound, "invalid path segment", goerr.V("segment", s))
	}
	return nil
}
