package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagpack/pkg/domain/model"
	"github.com/m-mizutani/tagpack/pkg/usecase"
)

type mockPackager struct {
	runs atomic.Int32
	err  error
}

func (m *mockPackager) ListRefs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockPackager) Run(ctx context.Context) ([]*model.ReleaseResult, error) {
	m.runs.Add(1)
	return nil, m.err
}

func (m *mockPackager) Running() bool {
	return false
}

func TestHook_HandlePush(t *testing.T) {
	testCases := []struct {
		name     string
		kind     model.RefKind
		event    model.PushEvent
		expected bool
	}{
		{
			name:     "release branch",
			kind:     model.RefKindBranches,
			event:    model.PushEvent{Ref: "refs/heads/7.x-1.x"},
			expected: true,
		},
		{
			name:     "mainline branch",
			kind:     model.RefKindBranches,
			event:    model.PushEvent{Ref: "refs/heads/master"},
			expected: false,
		},
		{
			name:     "deleted branch",
			kind:     model.RefKindBranches,
			event:    model.PushEvent{Ref: "refs/heads/7.x-1.x", Deleted: true},
			expected: false,
		},
		{
			name:     "tag while packaging branches",
			kind:     model.RefKindBranches,
			event:    model.PushEvent{Ref: "refs/tags/7.x-1.0"},
			expected: false,
		},
		{
			name:     "tag while packaging tags",
			kind:     model.RefKindTags,
			event:    model.PushEvent{Ref: "refs/tags/7.x-1.0"},
			expected: true,
		},
		{
			name:     "branch while packaging all",
			kind:     model.RefKindAll,
			event:    model.PushEvent{Ref: "refs/heads/8.x-2.x"},
			expected: true,
		},
		{
			name:     "unsupported core",
			kind:     model.RefKindAll,
			event:    model.PushEvent{Ref: "refs/tags/9.x-1.0"},
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			packager := &mockPackager{}
			hook, err := usecase.NewHook(packager, nil, tc.kind)
			gt.NoError(t, err)

			dispatched, err := hook.HandlePush(context.Background(), &tc.event)
			gt.NoError(t, err)
			gt.Value(t, dispatched).Equal(tc.expected)

			hook.Wait()
			if tc.expected {
				gt.Number(t, packager.runs.Load()).Equal(int32(1))
			} else {
				gt.Number(t, packager.runs.Load()).Equal(int32(0))
			}
		})
	}
}

func TestHook_RunFailureIsContained(t *testing.T) {
	packager := &mockPackager{err: errors.New("checkout failed")}
	hook, err := usecase.NewHook(packager, nil, model.RefKindBranches)
	gt.NoError(t, err)

	dispatched, err := hook.HandlePush(context.Background(), &model.PushEvent{Ref: "refs/heads/7.x-1.x"})
	gt.NoError(t, err)
	gt.True(t, dispatched)

	hook.Wait()
	gt.Number(t, packager.runs.Load()).Equal(int32(1))
}

func TestHook_CustomPattern(t *testing.T) {
	matcher, err := model.NewRefMatcher(`^release-`)
	gt.NoError(t, err)

	packager := &mockPackager{}
	hook, err := usecase.NewHook(packager, matcher, model.RefKindBranches)
	gt.NoError(t, err)

	dispatched, err := hook.HandlePush(context.Background(), &model.PushEvent{Ref: "refs/heads/7.x-1.x"})
	gt.NoError(t, err)
	gt.False(t, dispatched)

	dispatched, err = hook.HandlePush(context.Background(), &model.PushEvent{Ref: "refs/heads/release-2"})
	gt.NoError(t, err)
	gt.True(t, dispatched)
	hook.Wait()
}

func TestNewHook_Validation(t *testing.T) {
	_, err := usecase.NewHook(nil, nil, model.RefKindBranches)
	gt.Error(t, err)

	_, err = usecase.NewHook(&mockPackager{}, nil, "remotes")
	gt.Error(t, err)
}
