package interfaces

import (
	"context"

	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

// Notifier announces the releases produced by a packaging run
type Notifier interface {
	NotifyReleases(ctx context.Context, results []*model.ReleaseResult) error
}
