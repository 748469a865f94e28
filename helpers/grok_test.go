package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrokFieldNames(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{
			name:    "single field",
			pattern: `%{WORD:variant}`,
			want:    []string{"variant"},
		},
		{
			name:    "archive layout",
			pattern: `sor-global-%{YEAR:year}-%{MONTHNUM:month}-%{MONTHDAY:day}-%{VARIANT:variant}.zip`,
			want:    []string{"year", "month", "day", "variant"},
		},
		{
			name:    "unnamed patterns",
			pattern: `%{WORD}/%{NUMBER}`,
			want:    []string{},
		},
		{
			name:    "duplicate names",
			pattern: `%{WORD:a}/%{NUMBER:a}`,
			want:    []string{"a", "a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GrokFieldNames(tt.pattern))
		})
	}
}

func TestMissingGrokFields(t *testing.T) {
	pattern := `dump-%{YEAR:year}-%{MONTHNUM:month}.zip`
	assert.Equal(t, []string{"day"}, MissingGrokFields(pattern, "year", "month", "day"))
	assert.Empty(t, MissingGrokFields(pattern, "year"))
}
