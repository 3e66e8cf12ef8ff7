package model_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

func TestValidateDescriptor(t *testing.T) {
	t.Run("generated descriptor is valid", func(t *testing.T) {
		gt.NoError(t, model.ValidateDescriptor(strings.NewReader(expectedDescriptor)))
	})

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing namespace",
			doc:  strings.Replace(expectedDescriptor, ` xmlns:dc="http://purl.org/dc/elements/1.1/"`, "", 1),
		},
		{
			name: "wrong namespace",
			doc:  strings.Replace(expectedDescriptor, "http://purl.org/dc/elements/1.1/", "http://example.com/dc", 1),
		},
		{
			name: "duplicated title",
			doc:  strings.Replace(expectedDescriptor, "<title>My webform</title>", "<title>My webform</title><title>Again</title>", 1),
		},
		{
			name: "missing creator",
			doc:  strings.Replace(expectedDescriptor, "<dc:creator>Deeplace</dc:creator>", "", 1),
		},
		{
			name: "missing release checksum",
			doc:  strings.Replace(expectedDescriptor, "<mdhash>08a78d6c56a6a4daa9c943fe1ef3e270</mdhash>", "", 1),
		},
		{
			name: "missing project terms",
			doc:  strings.Replace(expectedDescriptor, expectedDescriptor[strings.Index(expectedDescriptor, "<terms>"):strings.Index(expectedDescriptor, "<releases>")], "", 1),
		},
		{
			name: "missing release terms",
			doc:  expectedDescriptor[:strings.LastIndex(expectedDescriptor, "<terms>")] + "</release></releases></project>",
		},
		{
			name: "no release",
			doc:  strings.Replace(expectedDescriptor, expectedDescriptor[strings.Index(expectedDescriptor, "<release>"):strings.Index(expectedDescriptor, "</releases>")], "", 1),
		},
		{
			name: "wrong root",
			doc:  `<?xml version="1.0" encoding="UTF-8"?><module xmlns:dc="http://purl.org/dc/elements/1.1/"></module>`,
		},
		{
			name: "not xml",
			doc:  "<project><title>",
		},
		{
			name: "empty",
			doc:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Error(t, model.ValidateDescriptor(strings.NewReader(tt.doc)))
		})
	}

	t.Run("two valid releases", func(t *testing.T) {
		start := strings.Index(expectedDescriptor, "<release>")
		end := strings.Index(expectedDescriptor, "</releases>")
		release := expectedDescriptor[start:end]
		doc := strings.Replace(expectedDescriptor, release, release+release, 1)
		gt.NoError(t, model.ValidateDescriptor(strings.NewReader(doc)))
	})
}

func TestPushEvent(t *testing.T) {
	m, err := model.NewRefMatcher("")
	gt.NoError(t, err)

	branch := &model.PushEvent{Ref: "refs/heads/7.x-1.x"}
	gt.Value(t, branch.RefName()).Equal("7.x-1.x")
	gt.Value(t, branch.RefKind()).Equal(model.RefKindBranches)
	gt.True(t, branch.ShouldPackage(m))

	tag := &model.PushEvent{Ref: "refs/tags/7.x-1.0"}
	gt.Value(t, tag.RefName()).Equal("7.x-1.0")
	gt.Value(t, tag.RefKind()).Equal(model.RefKindTags)

	deleted := &model.PushEvent{Ref: "refs/heads/7.x-1.x", Deleted: true}
	gt.False(t, deleted.ShouldPackage(m))

	other := &model.PushEvent{Ref: "refs/heads/master"}
	gt.False(t, other.ShouldPackage(m))
}
