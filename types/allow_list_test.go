package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowList(t *testing.T) {
	l := NewAllowList([]string{"Facebook", "Google Maps", "Facebook"})

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []string{"Facebook", "Google Maps"}, l.Values())
	assert.True(t, l.Contains("Google Maps"))
	assert.False(t, l.Contains("google maps"), "membership is case-sensitive")
	assert.False(t, l.Contains("Unknown"))
}
