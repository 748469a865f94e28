package events

// FileFiltered is raised when a source file has been filtered
type FileFiltered struct {
	Base
	Path string
	// Rows is the number of rows which matched the allow list
	Rows int64
}

func NewFileFilteredEvent(executionId, path string, rows int64) *FileFiltered {
	return &FileFiltered{
		Base: newBase(executionId),
		Path: path,
		Rows: rows,
	}
}

// FileSkipped is raised when a source file yields nothing to publish
type FileSkipped struct {
	Base
	Path   string
	Reason string
}

func NewFileSkippedEvent(executionId, path, reason string) *FileSkipped {
	return &FileSkipped{
		Base:   newBase(executionId),
		Path:   path,
		Reason: reason,
	}
}
