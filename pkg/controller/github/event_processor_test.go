package github_test

import (
	"context"
	"testing"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/gt"

	githubcontroller "github.com/m-mizutani/tagpack/pkg/controller/github"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

// mockHookUseCase records the push events it receives
type mockHookUseCase struct {
	events []*model.PushEvent
}

func (m *mockHookUseCase) HandlePush(ctx context.Context, event *model.PushEvent) (bool, error) {
	m.events = append(m.events, event)
	return event.ShouldPackage(mustMatcher()), nil
}

func mustMatcher() *model.RefMatcher {
	m, err := model.NewRefMatcher("")
	if err != nil {
		panic(err)
	}
	return m
}

func TestEventProcessor_Push(t *testing.T) {
	ctx := context.Background()
	uc := &mockHookUseCase{}
	processor := githubcontroller.NewEventProcessor(uc)

	event := &github.PushEvent{
		Ref:     github.Ptr("refs/heads/7.x-1.x"),
		Deleted: github.Ptr(false),
		Repo: &github.PushEventRepository{
			FullName: github.Ptr("example/mywebform"),
		},
		Sender: &github.User{
			Login: github.Ptr("maintainer"),
		},
	}

	dispatched, err := processor.ProcessEvent(ctx, "delivery-1", githubcontroller.EventPush, event)
	gt.NoError(t, err)
	gt.True(t, dispatched)

	gt.Number(t, len(uc.events)).Equal(1)
	got := uc.events[0]
	gt.Value(t, got.DeliveryID).Equal("delivery-1")
	gt.Value(t, got.Ref).Equal("refs/heads/7.x-1.x")
	gt.Value(t, got.Repository).Equal("example/mywebform")
	gt.Value(t, got.Sender).Equal("maintainer")
	gt.False(t, got.Deleted)
	gt.False(t, got.ReceivedAt.IsZero())
}

func TestEventProcessor_PushWithoutRef(t *testing.T) {
	uc := &mockHookUseCase{}
	processor := githubcontroller.NewEventProcessor(uc)

	_, err := processor.ProcessEvent(context.Background(), "delivery-2", githubcontroller.EventPush, &github.PushEvent{})
	gt.Error(t, err)
	gt.Number(t, len(uc.events)).Equal(0)
}

func TestEventProcessor_PayloadMismatch(t *testing.T) {
	uc := &mockHookUseCase{}
	processor := githubcontroller.NewEventProcessor(uc)

	_, err := processor.ProcessEvent(context.Background(), "delivery-3", githubcontroller.EventPush, &github.PingEvent{})
	gt.Error(t, err)
}

func TestEventProcessor_IgnoredEvents(t *testing.T) {
	uc := &mockHookUseCase{}
	processor := githubcontroller.NewEventProcessor(uc)

	dispatched, err := processor.ProcessEvent(context.Background(), "delivery-4", githubcontroller.EventPing,
		&github.PingEvent{Zen: github.Ptr("Keep it logically awesome.")})
	gt.NoError(t, err)
	gt.False(t, dispatched)

	dispatched, err = processor.ProcessEvent(context.Background(), "delivery-5", "release", &github.ReleaseEvent{})
	gt.NoError(t, err)
	gt.False(t, dispatched)

	gt.Number(t, len(uc.events)).Equal(0)
}
