package storage

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCS stores objects in a Cloud Storage bucket below an optional prefix
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS connects to Cloud Storage. Options are passed to the client, e.g.
// option.WithEndpoint for an emulator.
func NewGCS(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &GCS{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Close releases the underlying client
func (s *GCS) Close() error {
	return s.client.Close()
}

// Put uploads r as key
func (s *GCS) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	name := s.prefix + key
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to upload object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", name),
		)
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object upload",
			goerr.V("bucket", s.bucket),
			goerr.V("object", name),
		)
	}

	return nil
}

// Get downloads key
func (s *GCS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	name := s.prefix + key
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, goerr.Wrap(model.ErrNotFound, "object does not exist",
			goerr.V("bucket", s.bucket),
			goerr.V("object", name),
		)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", name),
		)
	}
	return r, nil
}

// List returns keys beginning with prefix, without the store prefix
func (s *GCS) List(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix + prefix})

	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list objects",
				goerr.V("bucket", s.bucket),
				goerr.V("prefix", s.prefix+prefix),
			)
		}
		keys = append(keys, strings.TrimPrefix(attrs.Name, s.prefix))
	}

	sort.Strings(keys)
	return keys, nil
}
