package types

import (
	"path/filepath"
	"slices"
	"strings"
)

// ExtensionSet matches file names by suffix, case-insensitively. An extension may span
// several dots, such as ".csv.gz", and the longest matching extension wins.
type ExtensionSet struct {
	extensions []string
}

func NewExtensionSet(extensions ...string) *ExtensionSet {
	s := &ExtensionSet{}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(s.extensions, ext) {
			s.extensions = append(s.extensions, ext)
		}
	}
	// longest first, so Match prefers ".csv.gz" over ".gz"
	slices.SortFunc(s.extensions, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	return s
}

// Match returns the extension of the set the base name of path ends with.
// A name which is nothing but the extension does not match.
func (s *ExtensionSet) Match(path string) (string, bool) {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range s.extensions {
		if len(name) > len(ext) && strings.HasSuffix(name, ext) {
			return ext, true
		}
	}
	return "", false
}

func (s *ExtensionSet) Contains(path string) bool {
	_, ok := s.Match(path)
	return ok
}

// Extensions returns the extensions of the set in lexical order
func (s *ExtensionSet) Extensions() []string {
	res := slices.Clone(s.extensions)
	slices.Sort(res)
	return res
}
