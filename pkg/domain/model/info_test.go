package model_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

const webformInfo = `name = My webform
description = "Defines a custom webform."
package = Deeplace
core = 7.x
version = "7.x-1.0"

; dependencies
dependencies[] = webform
dependencies[] = views
`

func TestParseInfo(t *testing.T) {
	info, err := model.ParseInfo(strings.NewReader(webformInfo))
	gt.NoError(t, err)

	gt.Value(t, info.Name).Equal("My webform")
	gt.Value(t, info.Description).Equal("Defines a custom webform.")
	gt.Value(t, info.Package).Equal("Deeplace")
	gt.Value(t, info.Core).Equal("7.x")
	gt.Value(t, info.Version).Equal("7.x-1.0")
	gt.Value(t, info.Lists["dependencies"]).Equal([]string{"webform", "views"})
	gt.Value(t, info.ShortName()).Equal("mywebform")

	t.Run("project key overrides short name", func(t *testing.T) {
		info, err := model.ParseInfo(strings.NewReader("name = My webform\nproject = my_webform\n"))
		gt.NoError(t, err)
		gt.Value(t, info.ShortName()).Equal("my_webform")
	})

	t.Run("line without separator", func(t *testing.T) {
		_, err := model.ParseInfo(strings.NewReader("name = ok\nbroken line\n"))
		gt.Error(t, err)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := model.ParseInfo(strings.NewReader("core = 7.x\n"))
		gt.Error(t, err)
	})
}

func TestParseInfoYAML(t *testing.T) {
	data := `name: My webform
type: module
description: 'Defines a custom webform.'
core: 8.x
version: '8.x-1.3'
package: Deeplace
dependencies:
  - webform
  - views
`
	info, err := model.ParseInfoYAML(strings.NewReader(data))
	gt.NoError(t, err)
	gt.Value(t, info.Name).Equal("My webform")
	gt.Value(t, info.Core).Equal("8.x")
	gt.Value(t, info.Version).Equal("8.x-1.3")
	gt.Value(t, info.Values["type"]).Equal("module")
	gt.Value(t, info.Lists["dependencies"]).Equal([]string{"webform", "views"})
}

func TestParseInfoFile(t *testing.T) {
	t.Run("info", func(t *testing.T) {
		info, err := model.ParseInfoFile("mywebform.info", []byte(webformInfo))
		gt.NoError(t, err)
		gt.Value(t, info.Version).Equal("7.x-1.0")
	})

	t.Run("info.yml", func(t *testing.T) {
		info, err := model.ParseInfoFile("mywebform.info.yml", []byte("name: Webform\ncore: 8.x\n"))
		gt.NoError(t, err)
		gt.Value(t, info.Core).Equal("8.x")
	})
}

func TestIsInfoFile(t *testing.T) {
	gt.True(t, model.IsInfoFile("mywebform.info"))
	gt.True(t, model.IsInfoFile("mywebform.info.yml"))
	gt.False(t, model.IsInfoFile("mywebform.module"))
	gt.False(t, model.IsInfoFile("README.md"))
}
