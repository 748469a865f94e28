package artifact_source

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/dsa-lake/data-lander/constants"
	"github.com/dsa-lake/data-lander/helpers"
	"github.com/dsa-lake/data-lander/types"
	"github.com/elastic/go-grok"
)

// PrefixStyle selects how the archive date is rendered in the destination prefix
type PrefixStyle string

const (
	// PrefixStyleDashed renders global-<variant>/YYYY-MM-DD/
	PrefixStyleDashed PrefixStyle = "dashed"
	// PrefixStyleNested renders global-<variant>/YYYY/MM/DD/
	PrefixStyleNested PrefixStyle = "nested"
)

func (s PrefixStyle) Validate() error {
	switch s {
	case PrefixStyleDashed, PrefixStyleNested:
		return nil
	}
	return fmt.Errorf("unknown prefix style '%s', expected '%s' or '%s'", s, PrefixStyleDashed, PrefixStyleNested)
}

// layoutPatterns are the custom grok patterns available to archive layouts
var layoutPatterns = map[string]string{
	"VARIANT": `full|light`,
}

// ArchiveLayout extracts the date and variant of an archive from its file name,
// using a grok pattern
type ArchiveLayout struct {
	pattern string
	g       *grok.Grok
}

func NewArchiveLayout(pattern string) (*ArchiveLayout, error) {
	if missing := helpers.MissingGrokFields(pattern, constants.LayoutFieldYear, constants.LayoutFieldMonth, constants.LayoutFieldDay); len(missing) > 0 {
		return nil, fmt.Errorf("archive layout %s must capture %v", pattern, missing)
	}
	g := grok.New()
	if err := g.AddPatterns(layoutPatterns); err != nil {
		return nil, fmt.Errorf("error adding layout patterns: %w", err)
	}
	// anchor to the whole file name
	if err := g.Compile("^"+pattern+"$", true); err != nil {
		return nil, fmt.Errorf("error compiling archive layout %s: %w", pattern, err)
	}
	return &ArchiveLayout{pattern: pattern, g: g}, nil
}

func (l *ArchiveLayout) Pattern() string {
	return l.pattern
}

// Parse extracts the layout properties of the archive at location (a URL or path).
// It returns false if the file name does not match the layout.
func (l *ArchiveLayout) Parse(location string) (*types.ArtifactInfo, bool, error) {
	name := archiveFileName(location)
	if !l.g.MatchString(name) {
		return nil, false, nil
	}
	metadata, err := l.g.Parse([]byte(name))
	if err != nil {
		return nil, false, fmt.Errorf("error parsing %s with layout %s: %w", name, l.pattern, err)
	}

	properties := make(map[string]string, len(metadata))
	for k, v := range metadata {
		properties[k] = string(v)
	}
	info := types.NewArtifactInfo(location)
	if err := info.SetLayoutProperties(properties); err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// Prefix returns the destination prefix for the archive, e.g. global-full/2024-01-31/
func Prefix(info *types.ArtifactInfo, style PrefixStyle) string {
	variant := info.Variant
	if variant == "" {
		variant = "full"
	}
	var date string
	switch style {
	case PrefixStyleNested:
		date = info.Date.Format("2006/01/02")
	default:
		date = info.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("global-%s/%s/", strings.ToLower(variant), date)
}

// DerivePrefix parses location with the layout and returns its destination prefix
func (l *ArchiveLayout) DerivePrefix(location string, style PrefixStyle) (string, error) {
	info, ok, err := l.Parse(location)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("archive name %s does not match layout %s, set an explicit prefix", archiveFileName(location), l.pattern)
	}
	return Prefix(info, style), nil
}

func archiveFileName(location string) string {
	if IsURL(location) {
		if u, err := url.Parse(location); err == nil {
			return path.Base(u.Path)
		}
	}
	return path.Base(strings.ReplaceAll(location, `\`, "/"))
}
