package artifact_source

import (
	"context"
	"net/url"
	"strings"

	"github.com/dsa-lake/data-lander/types"
)

// ArtifactSource makes a source archive available on the local filesystem
type ArtifactSource interface {
	Identifier() string
	// Fetch makes the archive at location available locally, downloading it into destDir if required
	Fetch(ctx context.Context, location, destDir string) (*types.DownloadedArtifactInfo, error)
}

// IsURL returns whether location is an http or https URL
func IsURL(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// ForLocation returns the source able to fetch location
func ForLocation(location string, httpSource *HttpSource) ArtifactSource {
	if IsURL(location) {
		return httpSource
	}
	return NewFileSystemSource()
}
