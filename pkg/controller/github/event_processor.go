package github

import (
	"context"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/interfaces"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

// Event types the processor understands
const (
	EventPush = "push"
	EventPing = "ping"
)

// EventProcessor turns parsed GitHub webhook payloads into push events for the hook use case
type EventProcessor struct {
	hookUC interfaces.HookUseCase
	now    func() time.Time
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(hookUC interfaces.HookUseCase) *EventProcessor {
	return &EventProcessor{
		hookUC: hookUC,
		now:    time.Now,
	}
}

// ProcessEvent handles a payload returned by github.ParseWebHook and reports
// whether a packaging run was started
func (p *EventProcessor) ProcessEvent(ctx context.Context, deliveryID, eventType string, payload any) (bool, error) {
	logger := ctxlog.From(ctx)

	switch eventType {
	case EventPing:
		if e, ok := payload.(*github.PingEvent); ok {
			logger.Info("Received ping", "zen", e.GetZen(), "hook_id", e.GetHookID())
		}
		return false, nil

	case EventPush:
		e, ok := payload.(*github.PushEvent)
		if !ok {
			return false, goerr.New("unexpected push payload", goerr.V("delivery_id", deliveryID))
		}
		event, err := p.toPushEvent(deliveryID, e)
		if err != nil {
			return false, err
		}
		return p.hookUC.HandlePush(ctx, event)

	default:
		logger.Info("Ignoring unsupported event type", "event_type", eventType)
		return false, nil
	}
}

func (p *EventProcessor) toPushEvent(deliveryID string, e *github.PushEvent) (*model.PushEvent, error) {
	ref := e.GetRef()
	if ref == "" {
		return nil, goerr.New("missing ref in push event", goerr.V("delivery_id", deliveryID))
	}

	return &model.PushEvent{
		DeliveryID: deliveryID,
		Ref:        ref,
		Repository: e.GetRepo().GetFullName(),
		Sender:     e.GetSender().GetLogin(),
		Deleted:    e.GetDeleted(),
		ReceivedAt: p.now(),
	}, nil
}
