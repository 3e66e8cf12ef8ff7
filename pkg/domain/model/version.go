package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/goerr/v2"
)

// RefKind selects which git refs are enumerated for packaging
type RefKind string

const (
	RefKindBranches RefKind = "branches"
	RefKindTags     RefKind = "tags"
	RefKindAll      RefKind = "all"
)

// Validate checks that k is a known ref kind
func (k RefKind) Validate() error {
	switch k {
	case RefKindBranches, RefKindTags, RefKindAll:
		return nil
	default:
		return goerr.New("unknown ref kind", goerr.V("kind", string(k)))
	}
}

// DefaultRefPattern accepts Drupal 6, 7 and 8 version refs such as 7.x or 6.x-1.12
const DefaultRefPattern = `^[6-8]\.x[^\s/]*$`

// RefMatcher selects the refs that name a releasable version
type RefMatcher struct {
	re *regexp.Regexp
}

// NewRefMatcher compiles pattern. An empty pattern means DefaultRefPattern.
func NewRefMatcher(pattern string) (*RefMatcher, error) {
	if pattern == "" {
		pattern = DefaultRefPattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid ref pattern", goerr.V("pattern", pattern))
	}

	return &RefMatcher{re: re}, nil
}

// Match reports whether ref names a releasable version. A ref containing a slash
// never matches: its archive key would span two path segments and the files
// route could not serve it.
func (m *RefMatcher) Match(ref string) bool {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "/") {
		return false
	}
	return m.re.MatchString(ref)
}

// Filter returns the matching refs in their original order, without duplicates
func (m *RefMatcher) Filter(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	var matched []string
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if !m.Match(ref) {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		matched = append(matched, ref)
	}
	return matched
}

func (m *RefMatcher) String() string {
	return m.re.String()
}

// Version is a Drupal contrib version string: <core>-<major>.<patch>[-<extra>]
type Version struct {
	Core  string // e.g. 7.x
	Major string
	Patch string // numeric, or "x" for development snapshots
	Extra string // e.g. beta3, rc1, dev
}

// ParseVersion splits a version such as 7.x-1.0 or 7.x-2.0-beta3
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)

	core, rest, ok := strings.Cut(s, "-")
	if !ok || core == "" || rest == "" {
		return Version{}, goerr.New("version has no core prefix", goerr.V("version", s))
	}

	numbers, extra, _ := strings.Cut(rest, "-")
	major, patch, ok := strings.Cut(numbers, ".")
	if !ok || major == "" || patch == "" {
		return Version{}, goerr.New("version has no major.patch part", goerr.V("version", s))
	}

	return Version{
		Core:  core,
		Major: major,
		Patch: patch,
		Extra: extra,
	}, nil
}

func (v Version) String() string {
	s := fmt.Sprintf("%s-%s.%s", v.Core, v.Major, v.Patch)
	if v.Extra != "" {
		s += "-" + v.Extra
	}
	return s
}

// SemVer maps the version onto semantic versioning so releases can be ordered.
// A non-numeric patch (7.x-1.x-dev) becomes 1.0.0-dev.
func (v Version) SemVer() (*semver.Version, error) {
	patch, extra := v.Patch, v.Extra
	if patch == "x" {
		patch = "0"
		if extra == "" {
			extra = "dev"
		}
	}

	raw := fmt.Sprintf("%s.%s.0", v.Major, patch)
	if extra != "" {
		raw += "-" + extra
	}

	sv, err := semver.StrictNewVersion(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "version is not orderable", goerr.V("version", v.String()))
	}
	return sv, nil
}
