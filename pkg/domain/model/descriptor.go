package model

import (
	"encoding/xml"
	"io"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DublinCoreNS is bound to the dc prefix on the descriptor root
const DublinCoreNS = "http://purl.org/dc/elements/1.1/"

const (
	DefaultProjectType  = "project_module"
	DefaultStatus       = "published"
	DefaultArchiveType  = "tar.gz"
	DescriptorHeader    = `<?xml version="1.0" encoding="UTF-8"?>`
	DescriptorMediaType = "application/xml"
	ArchiveMediaType    = "application/gzip"
)

// Project is the release descriptor read by the update client. Field order is
// the element order on the wire.
type Project struct {
	XMLName          xml.Name  `xml:"project"`
	DC               string    `xml:"xmlns:dc,attr"`
	Title            string    `xml:"title"`
	ShortName        string    `xml:"short_name"`
	Creator          string    `xml:"dc:creator"`
	Type             string    `xml:"type"`
	APIVersion       string    `xml:"api_version"`
	RecommendedMajor string    `xml:"recommended_major"`
	SupportedMajor   string    `xml:"supported_major"`
	DefaultMajor     string    `xml:"default_major"`
	ProjectStatus    string    `xml:"project_status"`
	Link             string    `xml:"link"`
	Terms            Terms     `xml:"terms"`
	Releases         []Release `xml:"releases>release"`
}

// Release is a single packaged version inside a descriptor
type Release struct {
	Name         string        `xml:"name"`
	Version      string        `xml:"version"`
	Tag          string        `xml:"tag"`
	VersionMajor string        `xml:"version_major"`
	VersionPatch string        `xml:"version_patch"`
	Status       string        `xml:"status"`
	ReleaseLink  string        `xml:"release_link"`
	DownloadLink string        `xml:"download_link"`
	Date         string        `xml:"date"`
	MDHash       string        `xml:"mdhash"`
	FileSize     string        `xml:"filesize"`
	Files        []ReleaseFile `xml:"files>file"`
	Terms        Terms         `xml:"terms"`
}

// ReleaseFile describes one downloadable archive of a release
type ReleaseFile struct {
	URL         string `xml:"url"`
	ArchiveType string `xml:"archive_type"`
	MD5         string `xml:"md5"`
	Size        string `xml:"size"`
	FileDate    string `xml:"filedata"`
}

// Term is a taxonomy name/value pair
type Term struct {
	Name  string `xml:"name" toml:"name"`
	Value string `xml:"value" toml:"value"`
}

// Terms is a list of taxonomy terms. The terms element is written even when
// the list is empty.
type Terms []Term

// MarshalXML writes start around one term element per entry
func (ts Terms) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, t := range ts {
		if err := e.EncodeElement(t, xml.StartElement{Name: xml.Name{Local: "term"}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML reads the term children of start
func (ts *Terms) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var wrapper struct {
		Term []Term `xml:"term"`
	}
	if err := d.DecodeElement(&wrapper, &start); err != nil {
		return err
	}
	*ts = wrapper.Term
	return nil
}

// DefaultProjectTerms returns the project-level terms written when none are configured
func DefaultProjectTerms() []Term {
	return []Term{
		{Name: "Project", Value: "Modules"},
		{Name: "Maintenance status", Value: "Seeking new maintainer"},
		{Name: "Development status", Value: "No further development"},
		{Name: "Module categories", Value: "Content"},
		{Name: "Module categories", Value: "Import/export"},
	}
}

// DefaultReleaseTerms returns the release-level terms written when none are configured
func DefaultReleaseTerms() []Term {
	return []Term{
		{Name: "Release type", Value: "Security update"},
		{Name: "Release type", Value: "Bug fixes"},
		{Name: "Release type", Value: "New features"},
	}
}

// Archive is a packaged snapshot of one ref
type Archive struct {
	Key  string // storage key
	Type string // archive_type, tar.gz when empty
	MD5  string // hex digest
	Size int64
}

// Links are the absolute URLs written into a descriptor
type Links struct {
	Project        string
	ReleaseHistory string
	Download       string
}

// ReleaseInput is everything the descriptor builder needs for one ref
type ReleaseInput struct {
	Info      *ModuleInfo
	Ref       string
	Archive   Archive
	Links     Links
	Creator   string // falls back to the info package
	Type      string
	Status    string
	Timestamp time.Time

	ProjectTerms []Term // nil means DefaultProjectTerms
	ReleaseTerms []Term // nil means DefaultReleaseTerms
}

// ReleaseVersion returns the version declared by info, or ref when info has
// none, together with its parsed form
func ReleaseVersion(info *ModuleInfo, ref string) (string, Version, error) {
	raw := info.Version
	if raw == "" {
		raw = ref
	}

	version, err := ParseVersion(raw)
	if err != nil {
		return "", Version{}, goerr.Wrap(err, "failed to parse release version", goerr.V("ref", ref))
	}
	return raw, version, nil
}

// APIVersion is the core compatibility written to api_version
func APIVersion(info *ModuleInfo, version Version) string {
	if info.Core != "" {
		return info.Core
	}
	return version.Core
}

// BuildDescriptor assembles the descriptor for a single release. It has no side
// effects: the same input always yields the same tree.
func BuildDescriptor(in ReleaseInput) (*Project, error) {
	if in.Info == nil {
		return nil, goerr.New("release input has no module info", goerr.V("ref", in.Ref))
	}

	rawVersion, version, err := ReleaseVersion(in.Info, in.Ref)
	if err != nil {
		return nil, err
	}
	apiVersion := APIVersion(in.Info, version)

	creator := in.Creator
	if creator == "" {
		creator = in.Info.Package
	}

	projectType := in.Type
	if projectType == "" {
		projectType = DefaultProjectType
	}

	status := in.Status
	if status == "" {
		status = DefaultStatus
	}

	archiveType := in.Archive.Type
	if archiveType == "" {
		archiveType = DefaultArchiveType
	}

	projectTerms := in.ProjectTerms
	if projectTerms == nil {
		projectTerms = DefaultProjectTerms()
	}
	releaseTerms := in.ReleaseTerms
	if releaseTerms == nil {
		releaseTerms = DefaultReleaseTerms()
	}

	shortName := in.Info.ShortName()
	date := strconv.FormatInt(in.Timestamp.Unix(), 10)
	size := strconv.FormatInt(in.Archive.Size, 10)

	return &Project{
		DC:               DublinCoreNS,
		Title:            in.Info.Name,
		ShortName:        shortName,
		Creator:          creator,
		Type:             projectType,
		APIVersion:       apiVersion,
		RecommendedMajor: version.Major,
		SupportedMajor:   version.Major,
		DefaultMajor:     version.Major,
		ProjectStatus:    status,
		Link:             in.Links.Project,
		Terms:            projectTerms,
		Releases: []Release{
			{
				Name:         shortName + " " + rawVersion,
				Version:      rawVersion,
				Tag:          in.Ref,
				VersionMajor: version.Major,
				VersionPatch: version.Patch,
				Status:       status,
				ReleaseLink:  in.Links.ReleaseHistory,
				DownloadLink: in.Links.Download,
				Date:         date,
				MDHash:       in.Archive.MD5,
				FileSize:     size,
				Files: []ReleaseFile{
					{
						URL:         in.Links.Download,
						ArchiveType: archiveType,
						MD5:         in.Archive.MD5,
						Size:        size,
						FileDate:    date,
					},
				},
				Terms: releaseTerms,
			},
		},
	}, nil
}

// EncodeDescriptor writes the XML header followed by p. With an empty indent the
// document is compact and directly follows the header.
func EncodeDescriptor(w io.Writer, p *Project, indent string) error {
	header := DescriptorHeader
	if indent != "" {
		header += "\n"
	}
	if _, err := io.WriteString(w, header); err != nil {
		return goerr.Wrap(err, "failed to write descriptor header")
	}

	enc := xml.NewEncoder(w)
	if indent != "" {
		enc.Indent("", indent)
	}
	if err := enc.Encode(p); err != nil {
		return goerr.Wrap(err, "failed to encode descriptor", goerr.V("short_name", p.ShortName))
	}
	if err := enc.Close(); err != nil {
		return goerr.Wrap(err, "failed to flush descriptor")
	}

	return nil
}

// DescriptorSummary is the part of a stored descriptor needed to pick the
// newest release for a core
type DescriptorSummary struct {
	ShortName  string           `xml:"short_name"`
	APIVersion string           `xml:"api_version"`
	Releases   []ReleaseSummary `xml:"releases>release"`
}

// ReleaseSummary is the ordering-relevant part of a stored release
type ReleaseSummary struct {
	Version string `xml:"version"`
	Tag     string `xml:"tag"`
	Date    int64  `xml:"date"`
}

// DecodeDescriptorSummary reads a stored descriptor
func DecodeDescriptorSummary(r io.Reader) (*DescriptorSummary, error) {
	var summary DescriptorSummary
	if err := xml.NewDecoder(r).Decode(&summary); err != nil {
		return nil, goerr.Wrap(err, "failed to decode descriptor")
	}
	return &summary, nil
}
