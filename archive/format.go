package archive

import (
	"context"
	"io"
	"path/filepath"
	"slices"
	"strings"
)

// Entry is a single item discovered in a container
type Entry struct {
	// Name is the slash separated path of the entry relative to the container root
	Name  string
	IsDir bool
	// Size is the uncompressed size declared by the container, or -1 if unknown.
	// It is advisory only; the number of bytes actually copied is what is enforced.
	Size int64
}

// Format is implemented by each supported container format
type Format interface {
	Identifier() string
	// Extensions returns the lower case file extensions (including the dot) handled by the format
	Extensions() []string
	// Walk calls fn for every entry of the container at path, in the container's native order.
	// For directory entries r is nil. r is only valid for the duration of the call.
	Walk(ctx context.Context, path string, fn func(e Entry, r io.Reader) error) error
}

// Formats is the registry of container formats, populated by init functions
var Formats []func() Format

// FormatLookup resolves a file name to the format which can expand it
type FormatLookup struct {
	byExtension map[string]Format
}

func NewFormatLookup(ctors ...func() Format) *FormatLookup {
	l := &FormatLookup{byExtension: make(map[string]Format)}
	for _, ctor := range ctors {
		f := ctor()
		for _, ext := range f.Extensions() {
			l.byExtension[strings.ToLower(ext)] = f
		}
	}
	return l
}

// ForName returns the format registered for the (case-insensitive) extension of name
func (l *FormatLookup) ForName(name string) (Format, bool) {
	f, ok := l.byExtension[strings.ToLower(filepath.Ext(name))]
	return f, ok
}

// Extensions returns the registered extensions, sorted
func (l *FormatLookup) Extensions() []string {
	res := make([]string, 0, len(l.byExtension))
	for ext := range l.byExtension {
		res = append(res, ext)
	}
	slices.Sort(res)
	return res
}

// TrimExtension strips the final extension from name
func TrimExtension(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
