package interfaces

import (
	"context"

	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

// GitRepository is the working tree releases are packaged from
type GitRepository interface {
	// Dir returns the repository's working directory
	Dir() string

	// ListRefs lists short ref names of the given kind
	ListRefs(ctx context.Context, kind model.RefKind) ([]string, error)

	// CurrentRef returns the checked out branch, or the commit SHA when HEAD is detached
	CurrentRef(ctx context.Context) (string, error)

	// Checkout switches the working tree to ref
	Checkout(ctx context.Context, ref string) error

	// ListFiles lists the files tracked at HEAD
	ListFiles(ctx context.Context) ([]string, error)

	// ReadFile reads a file from the working tree
	ReadFile(ctx context.Context, name string) ([]byte, error)

	// Archive writes a compressed snapshot of ref to output
	Archive(ctx context.Context, ref string, opts model.ArchiveOptions, output string) error
}
