package publish

import (
	"strings"

	"github.com/dsa-lake/data-lander/columnar"
	"github.com/dsa-lake/data-lander/types"
)

// Key returns the destination key for an artifact named name: <prefix><sanitized name>.parquet
func Key(prefix, name string) string {
	return normalizePrefix(prefix) + types.SanitizeKey(name) + "." + columnar.Extension
}

// SplitKey returns the destination key of one category's rows from one source file:
// <prefix><category key>/<sanitized stem>.parquet
func SplitKey(prefix, categoryKey, stem string) string {
	return normalizePrefix(prefix) + types.SanitizeKey(categoryKey) + "/" + types.SanitizeKey(stem) + "." + columnar.Extension
}

// normalizePrefix ensures a non empty prefix ends with a single slash and has no leading slash
func normalizePrefix(prefix string) string {
	prefix = strings.TrimLeft(prefix, "/")
	if prefix == "" {
		return ""
	}
	return strings.TrimRight(prefix, "/") + "/"
}
