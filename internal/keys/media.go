package keys

import (
	"net/url"
	"path"
	"strings"
)

const (
	previewMarker  = "?dl=0"
	downloadMarker = "?dl=1"
)

// Normalize strips the share-link preview marker from a media URL.
func Normalize(raw string) string {
	return strings.ReplaceAll(raw, previewMarker, "")
}

// Filename returns the cache file name for a media URL: the last path
// component of the normalized URL. It is empty when no name can be derived.
func Filename(raw string) string {
	normalized := Normalize(raw)
	if normalized == "" {
		return ""
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}

// DownloadURL returns the link that asks the media host for the raw file.
func DownloadURL(raw string) string {
	return Normalize(raw) + downloadMarker
}
