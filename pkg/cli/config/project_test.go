package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagpack/pkg/cli/config"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

const projectTOML = `
creator = "Example Team"
type = "project_module"
status = "published"
link = "https://updates.example.com/project/mywebform"

[[terms]]
name = "Project"
value = "Modules"

[[terms]]
name = "Maintenance status"
value = "Actively maintained"

[[release_terms]]
name = "Release type"
value = "Bug fixes"
`

func TestProject_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagpack.toml")
	gt.NoError(t, os.WriteFile(path, []byte(projectTOML), 0644))

	pf, err := (&config.Project{Path: path}).Load()
	gt.NoError(t, err)

	gt.Value(t, pf.Creator).Equal("Example Team")
	gt.Value(t, pf.Type).Equal("project_module")
	gt.Value(t, pf.Status).Equal("published")
	gt.Value(t, pf.Link).Equal("https://updates.example.com/project/mywebform")
	gt.Value(t, pf.Terms).Equal([]model.Term{
		{Name: "Project", Value: "Modules"},
		{Name: "Maintenance status", Value: "Actively maintained"},
	})
	gt.Value(t, pf.ReleaseTerms).Equal([]model.Term{
		{Name: "Release type", Value: "Bug fixes"},
	})
}

func TestProject_LoadWithoutPath(t *testing.T) {
	pf, err := (&config.Project{}).Load()
	gt.NoError(t, err)
	gt.Value(t, pf.Creator).Equal("")
	gt.Number(t, len(pf.Terms)).Equal(0)
}

func TestProject_LoadMissingFile(t *testing.T) {
	_, err := (&config.Project{Path: filepath.Join(t.TempDir(), "missing.toml")}).Load()
	gt.Error(t, err)
}

func TestParseProjectFile_Invalid(t *testing.T) {
	testCases := map[string]string{
		"unknown key":        `maintainer = "someone"`,
		"broken syntax":      `creator = `,
		"term without value": "[[terms]]\nname = \"Project\"\n",
	}

	for name, input := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := config.ParseProjectFile([]byte(input))
			gt.Error(t, err)
		})
	}
}
