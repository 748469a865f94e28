package types

import "strings"

// UnknownCategoryKey is substituted when a value sanitizes to nothing
const UnknownCategoryKey = "unknown"

// SanitizeKey normalizes a raw category value into a storage-safe key:
// lower-cased, anything outside [a-z0-9-] replaced by '-', runs of '-'
// collapsed and trimmed. The result always matches ^[a-z0-9-]+$ and
// SanitizeKey(SanitizeKey(x)) == SanitizeKey(x).
func SanitizeKey(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	pendingSep := false
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return UnknownCategoryKey
	}
	return b.String()
}
