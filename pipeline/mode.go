package pipeline

import (
	"fmt"
	"strings"
)

// Mode selects how filtered rows are turned into published artifacts
type Mode string

const (
	// ModeFile publishes one artifact per source file
	ModeFile Mode = "file"
	// ModeSplit publishes one artifact per category per source file
	ModeSplit Mode = "split"
	// ModeConsolidate publishes one artifact per category across all source files
	ModeConsolidate Mode = "consolidate"

	DefaultMode = ModeConsolidate
)

var modes = []Mode{ModeFile, ModeSplit, ModeConsolidate}

// ParseMode returns the mode named by s; an empty string is the default mode
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return DefaultMode, nil
	}
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode '%s', expected one of %v", s, modes)
}
