package events

import "time"

// ArchiveDownloaded is raised once the archive is available locally
type ArchiveDownloaded struct {
	Base
	Source    string
	LocalPath string
	Size      int64
	Duration  time.Duration
}

func NewArchiveDownloadedEvent(executionId, source, localPath string, size int64, duration time.Duration) *ArchiveDownloaded {
	return &ArchiveDownloaded{
		Base:      newBase(executionId),
		Source:    source,
		LocalPath: localPath,
		Size:      size,
		Duration:  duration,
	}
}

// ArchiveExtracted is raised when the archive has been expanded, with the files it produced
type ArchiveExtracted struct {
	Base
	Files []string
}

func NewArchiveExtractedEvent(executionId string, files []string) *ArchiveExtracted {
	return &ArchiveExtracted{
		Base:  newBase(executionId),
		Files: files,
	}
}

// ArtifactPublished is raised for each object written to the store
type ArtifactPublished struct {
	Base
	Key   string
	Rows  int64
	Bytes int
}

func NewArtifactPublishedEvent(executionId, key string, rows int64, bytes int) *ArtifactPublished {
	return &ArtifactPublished{
		Base:  newBase(executionId),
		Key:   key,
		Rows:  rows,
		Bytes: bytes,
	}
}
