package model

import (
	"encoding/xml"
	"errors"
	"io"

	"github.com/m-mizutani/goerr/v2"
)

const (
	descriptorRootName   = "project"
	descriptorReleaseTag = "release"
)

// titleElements must appear exactly once directly under the project root
var titleElements = []string{
	"title",
	"short_name",
	"dc:creator",
	"type",
	"api_version",
	"recommended_major",
	"supported_major",
	"default_major",
	"project_status",
	"link",
	"terms",
	"releases",
}

// releaseElements must appear exactly once inside every release
var releaseElements = []string{
	"name",
	"version",
	"tag",
	"version_major",
	"version_patch",
	"status",
	"release_link",
	"download_link",
	"date",
	"mdhash",
	"filesize",
	"files",
	"terms",
}

// ValidateDescriptor checks that r holds a descriptor the update client accepts:
// a project root declaring the Dublin Core namespace, every title element once,
// and at least one release carrying every release element once.
func ValidateDescriptor(r io.Reader) error {
	dec := xml.NewDecoder(r)

	var (
		stack         []string
		projectCounts = map[string]int{}
		releaseCounts map[string]int
		releases      int
		sawRoot       bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "descriptor is not well-formed XML")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := elementKey(t.Name)

			switch len(stack) {
			case 0:
				if sawRoot || name != descriptorRootName {
					return goerr.New("descriptor root must be a single project element", goerr.V("element", name))
				}
				sawRoot = true
				if !declaresDublinCore(t.Attr) {
					return goerr.New("descriptor does not declare the Dublin Core namespace")
				}
			case 1:
				projectCounts[name]++
			case 2:
				if stack[1] == "releases" && name == descriptorReleaseTag {
					releaseCounts = map[string]int{}
				}
			case 3:
				if releaseCounts != nil && stack[2] == descriptorReleaseTag {
					releaseCounts[name]++
				}
			}
			stack = append(stack, name)

		case xml.EndElement:
			if len(stack) == 3 && stack[2] == descriptorReleaseTag && releaseCounts != nil {
				releases++
				if err := requireOnce(releaseElements, releaseCounts); err != nil {
					return goerr.Wrap(err, "invalid release", goerr.V("release", releases))
				}
				releaseCounts = nil
			}
			stack = stack[:len(stack)-1]
		}
	}

	if !sawRoot {
		return goerr.New("descriptor is empty")
	}
	if err := requireOnce(titleElements, projectCounts); err != nil {
		return goerr.Wrap(err, "invalid project block")
	}
	if releases == 0 {
		return goerr.New("descriptor has no release")
	}

	return nil
}

func elementKey(name xml.Name) string {
	switch name.Space {
	case "":
		return name.Local
	case DublinCoreNS, "dc":
		return "dc:" + name.Local
	default:
		return name.Space + ":" + name.Local
	}
}

func declaresDublinCore(attrs []xml.Attr) bool {
	for _, attr := range attrs {
		if attr.Name.Space == "xmlns" && attr.Name.Local == "dc" && attr.Value == DublinCoreNS {
			return true
		}
	}
	return false
}

func requireOnce(names []string, counts map[string]int) error {
	for _, name := range names {
		if n := counts[name]; n != 1 {
			return goerr.New("element must appear exactly once",
				goerr.V("element", name),
				goerr.V("count", n),
			)
		}
	}
	return nil
}
