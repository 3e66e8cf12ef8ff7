package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/interfaces"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
	"github.com/m-mizutani/tagpack/pkg/utils/async"
)

// Hook starts packaging runs from push notifications
type Hook struct {
	packager interfaces.PackagerUseCase
	matcher  *model.RefMatcher
	kind     model.RefKind
	wg       sync.WaitGroup
}

// NewHook creates a Hook that runs packager for pushes to refs of kind that
// matcher selects
func NewHook(packager interfaces.PackagerUseCase, matcher *model.RefMatcher, kind model.RefKind) (*Hook, error) {
	if packager == nil {
		return nil, goerr.New("packager is required")
	}
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if matcher == nil {
		m, err := model.NewRefMatcher("")
		if err != nil {
			return nil, err
		}
		matcher = m
	}

	return &Hook{
		packager: packager,
		matcher:  matcher,
		kind:     kind,
	}, nil
}

// HandlePush dispatches a packaging run in the background when event touched a
// releasable ref
func (h *Hook) HandlePush(ctx context.Context, event *model.PushEvent) (bool, error) {
	if event == nil {
		return false, goerr.New("push event is nil")
	}

	logger := ctxlog.From(ctx).With(
		"delivery_id", event.DeliveryID,
		"ref", event.Ref,
		"repository", event.Repository,
	)

	if h.kind != model.RefKindAll && event.RefKind() != h.kind {
		logger.Debug("Ignoring push to other ref kind", "kind", event.RefKind())
		return false, nil
	}
	if !event.ShouldPackage(h.matcher) {
		logger.Debug("Ignoring push", "deleted", event.Deleted)
		return false, nil
	}

	logger.Info("Push touched a release ref, packaging", "sender", event.Sender)

	ctx = ctxlog.With(ctx, logger)
	h.wg.Add(1)
	done := async.Dispatch(ctx, "package", func(ctx context.Context) error {
		results, err := h.packager.Run(ctx)
		if err != nil {
			return err
		}
		ctxlog.From(ctx).Info("Push packaging finished", "releases", len(results))
		return nil
	})
	go func() {
		<-done
		h.wg.Done()
	}()

	return true, nil
}

// Wait blocks until every dispatched run has finished
func (h *Hook) Wait() {
	h.wg.Wait()
}
