package model

import "time"

// ReleaseResult records what packaging a single ref produced
type ReleaseResult struct {
	Ref           string
	Version       string
	ShortName     string
	Core          string
	ArchiveKey    string
	DescriptorKey string
	DownloadURL   string
	MD5           string
	Size          int64
	Date          time.Time
}

// ArchiveKey is the storage key of the archive for ref
func ArchiveKey(shortName, ref string) string {
	return shortName + "/" + ref + "." + DefaultArchiveType
}

// DescriptorKey is the storage key of the descriptor for ref
func DescriptorKey(shortName, ref string) string {
	return shortName + "/" + ref + ".xml"
}

// ArchiveOptions controls git archive output
type ArchiveOptions struct {
	Format string // tar.gz when empty
	Prefix string // directory prepended to every path, e.g. mywebform/
}
