package pipeline

import (
	"time"

	"github.com/dsa-lake/data-lander/publish"
)

// FileFailure records a source file which could not be processed
type FileFailure struct {
	Path string
	Err  error
}

// Summary describes the outcome of processing one archive
type Summary struct {
	Source string
	Prefix string
	Mode   Mode
	// Files is the number of CSV files found in the archive
	Files     int
	Skipped   []string
	Failures  []FileFailure
	Published []*publish.Result
	// Overwritten holds each key published more than once, such as for files
	// sharing a name in different directories
	Overwritten []string
	Duration    time.Duration
}

func (s *Summary) published(key string) bool {
	for _, r := range s.Published {
		if r.Key == key {
			return true
		}
	}
	return false
}

// RowCount returns the total number of rows published
func (s *Summary) RowCount() int64 {
	var res int64
	for _, r := range s.Published {
		res += r.Rows
	}
	return res
}

// Bytes returns the total number of bytes published
func (s *Summary) Bytes() int64 {
	var res int64
	for _, r := range s.Published {
		res += int64(r.Bytes)
	}
	return res
}
