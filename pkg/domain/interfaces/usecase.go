package interfaces

import (
	"context"
	"io"

	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

// PackagerUseCase archives every matching ref and writes its descriptor
type PackagerUseCase interface {
	// ListRefs returns the refs a run would package
	ListRefs(ctx context.Context) ([]string, error)

	// Run packages every matching ref, aborting on the first failure
	Run(ctx context.Context) ([]*model.ReleaseResult, error)

	// Running reports whether a run is in progress
	Running() bool
}

// HistoryUseCase serves what the packager has published
type HistoryUseCase interface {
	// Lookup returns the newest descriptor of project for the given core
	Lookup(ctx context.Context, project, core string) ([]byte, error)

	// OpenArchive opens a published archive of project
	OpenArchive(ctx context.Context, project, file string) (io.ReadCloser, error)
}

// HookUseCase reacts to push notifications
type HookUseCase interface {
	// HandlePush starts packaging when the push touched a releasable ref and
	// reports whether it did
	HandlePush(ctx context.Context, event *model.PushEvent) (bool, error)
}
