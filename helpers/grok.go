package helpers

import (
	"regexp"
	"slices"
)

var namedGroup = regexp.MustCompile(`%{\w+:(\w+)}`)

// GrokFieldNames returns the names of the fields captured by a grok pattern, in pattern order
// e.g. sor-%{YEAR:year}-%{MONTHNUM:month} gives [year month]
func GrokFieldNames(pattern string) []string {
	matches := namedGroup.FindAllStringSubmatch(pattern, -1)
	names := []string{}
	for _, match := range matches {
		if len(match) > 1 {
			names = append(names, match[1])
		}
	}
	return names
}

// MissingGrokFields returns the required field names which the pattern does not capture
func MissingGrokFields(pattern string, required ...string) []string {
	names := GrokFieldNames(pattern)
	var missing []string
	for _, r := range required {
		if !slices.Contains(names, r) {
			missing = append(missing, r)
		}
	}
	return missing
}
