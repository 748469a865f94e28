package types

// DownloadedArtifactInfo contains information about a downloaded artifact
// is the same as ArtifactInfo, but with the local path and a size field
type DownloadedArtifactInfo struct {
	ArtifactInfo
	// the path of the downloaded artifact
	LocalName string

	Size int64
}

func NewDownloadedArtifactInfo(artifactInfo *ArtifactInfo, localName string, size int64) *DownloadedArtifactInfo {
	res := &DownloadedArtifactInfo{
		ArtifactInfo: *artifactInfo,
		LocalName:    localName,
		Size:         size,
	}
	res.Name = localName

	return res
}
