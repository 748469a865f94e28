package types

// Artifact is the columnar encoding of one filtered or consolidated table.
// It is immutable once created; the publisher assigns its destination key.
type Artifact struct {
	// Name is the unsanitized name the destination key is derived from
	// (the source file stem, or the category key)
	Name string
	// Source identifies where the rows came from (a file path or a category key)
	Source   string
	Data     []byte
	RowCount int64
}

func NewArtifact(name, source string, data []byte, rowCount int64) *Artifact {
	return &Artifact{
		Name:     name,
		Source:   source,
		Data:     data,
		RowCount: rowCount,
	}
}

// Size returns the encoded size in bytes
func (a *Artifact) Size() int {
	return len(a.Data)
}
