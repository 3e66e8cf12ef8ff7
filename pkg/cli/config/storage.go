package config

import (
	"context"
	"path"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/interfaces"
	"github.com/m-mizutani/tagpack/pkg/infra/storage"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Storage selects where archives and descriptors are published
type Storage struct {
	ArchiveDir    string
	DescriptorDir string
	GCSBucket     string
	GCSPrefix     string
	GCSEndpoint   string
}

// Flags returns CLI flags for storage configuration
func (c *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-dir",
			Usage:       "Directory archives are written to",
			Value:       "files",
			Destination: &c.ArchiveDir,
			Sources:     cli.EnvVars("TAGPACK_ARCHIVE_DIR"),
		},
		&cli.StringFlag{
			Name:        "descriptor-dir",
			Usage:       "Directory release descriptors are written to",
			Value:       "release-history",
			Destination: &c.DescriptorDir,
			Sources:     cli.EnvVars("TAGPACK_DESCRIPTOR_DIR"),
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Publish to this Cloud Storage bucket instead of local directories",
			Destination: &c.GCSBucket,
			Sources:     cli.EnvVars("TAGPACK_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix inside the bucket",
			Destination: &c.GCSPrefix,
			Sources:     cli.EnvVars("TAGPACK_GCS_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "gcs-endpoint",
			Usage:       "Cloud Storage endpoint, for emulators; disables authentication",
			Destination: &c.GCSEndpoint,
			Sources:     cli.EnvVars("TAGPACK_GCS_ENDPOINT"),
		},
	}
}

// Stores holds the archive and descriptor stores
type Stores struct {
	Archives    interfaces.Store
	Descriptors interfaces.Store

	closers []func() error
}

// Close releases backend clients
func (s *Stores) Close() error {
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			return goerr.Wrap(err, "failed to close storage")
		}
	}
	return nil
}

// Configure opens the configured backend. With a bucket, archives and
// descriptors live below <prefix>/files and <prefix>/release-history.
func (c *Storage) Configure(ctx context.Context) (*Stores, error) {
	if c.GCSBucket == "" {
		archives, err := storage.NewFileSystem(c.ArchiveDir)
		if err != nil {
			return nil, err
		}
		descriptors, err := storage.NewFileSystem(c.DescriptorDir)
		if err != nil {
			return nil, err
		}
		return &Stores{Archives: archives, Descriptors: descriptors}, nil
	}

	var opts []option.ClientOption
	if c.GCSEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.GCSEndpoint), option.WithoutAuthentication())
	}

	archives, err := storage.NewGCS(ctx, c.GCSBucket, path.Join(c.GCSPrefix, "files"), opts...)
	if err != nil {
		return nil, err
	}
	descriptors, err := storage.NewGCS(ctx, c.GCSBucket, path.Join(c.GCSPrefix, "release-history"), opts...)
	if err != nil {
		_ = archives.Close()
		return nil, err
	}

	return &Stores{
		Archives:    archives,
		Descriptors: descriptors,
		closers:     []func() error{archives.Close, descriptors.Close},
	}, nil
}
