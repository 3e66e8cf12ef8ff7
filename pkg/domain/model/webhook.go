package model

import (
	"strings"
	"time"
)

// PushEvent is a push notification for the packaged repository
type PushEvent struct {
	DeliveryID string    // X-GitHub-Delivery header
	Ref        string    // full ref, e.g. refs/heads/7.x-1.x
	Repository string    // owner/name
	Sender     string    // login of the pusher
	Deleted    bool      // the ref was removed
	ReceivedAt time.Time // when the hook arrived
}

// RefName strips refs/heads/ or refs/tags/ from the pushed ref
func (e *PushEvent) RefName() string {
	if name, ok := strings.CutPrefix(e.Ref, "refs/heads/"); ok {
		return name
	}
	if name, ok := strings.CutPrefix(e.Ref, "refs/tags/"); ok {
		return name
	}
	return e.Ref
}

// RefKind reports whether the pushed ref is a branch or a tag
func (e *PushEvent) RefKind() RefKind {
	if strings.HasPrefix(e.Ref, "refs/tags/") {
		return RefKindTags
	}
	return RefKindBranches
}

// ShouldPackage reports whether the push touched a ref that m selects for packaging
func (e *PushEvent) ShouldPackage(m *RefMatcher) bool {
	return !e.Deleted && m.Match(e.RefName())
}
