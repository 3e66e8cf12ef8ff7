package config

import (
	"bytes"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// ProjectFile is the optional TOML file describing the project. Release flags
// that are set take precedence over it.
type ProjectFile struct {
	Creator      string       `toml:"creator"`
	Type         string       `toml:"type"`
	Status       string       `toml:"status"`
	Link         string       `toml:"link"`
	Terms        []model.Term `toml:"terms"`
	ReleaseTerms []model.Term `toml:"release_terms"`
}

// Project holds the path of the project file
type Project struct {
	Path string
}

// Flags returns CLI flags for the project file
func (c *Project) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML project file (creator, type, status, link, terms, release_terms)",
			Destination: &c.Path,
			Sources:     cli.EnvVars("TAGPACK_CONFIG"),
		},
	}
}

// Load reads the project file. Without a path it returns an empty ProjectFile.
func (c *Project) Load() (*ProjectFile, error) {
	if c.Path == "" {
		return &ProjectFile{}, nil
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read project file", goerr.V("path", c.Path))
	}
	return ParseProjectFile(data)
}

// ParseProjectFile decodes a project file, rejecting unknown keys
func ParseProjectFile(data []byte) (*ProjectFile, error) {
	var pf ProjectFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&pf); err != nil {
		return nil, goerr.Wrap(err, "failed to parse project file")
	}

	for i, term := range append(append([]model.Term{}, pf.Terms...), pf.ReleaseTerms...) {
		if term.Name == "" || term.Value == "" {
			return nil, goerr.New("term needs a name and a value", goerr.V("index", i))
		}
	}

	return &pf, nil
}
