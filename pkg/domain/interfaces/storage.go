package interfaces

import (
	"context"
	"io"
)

// Store holds archives and descriptors under slash-separated keys
type Store interface {
	// Put writes the content of r under key, replacing any previous object
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Get opens the object stored under key. It returns an error wrapping
	// model.ErrNotFound when there is none.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns the keys beginning with prefix in lexical order
	List(ctx context.Context, prefix string) ([]string, error)
}
