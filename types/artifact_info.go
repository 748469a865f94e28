package types

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dsa-lake/data-lander/constants"
)

// ArtifactInfo describes a source archive
type ArtifactInfo struct {
	// if the artifact has been downloaded, Name will be the path to the downloaded file
	// and OriginalName will be the source location (URL or path)
	Name         string
	OriginalName string

	// properties extracted from the archive name using the archive layout
	Date       time.Time
	Variant    string
	Properties map[string]string
}

func NewArtifactInfo(location string) *ArtifactInfo {
	return &ArtifactInfo{
		Name:         location,
		OriginalName: location,
		Properties:   make(map[string]string),
	}
}

// SetLayoutProperties sets the properties of the artifact which have been determined from its name
func (i *ArtifactInfo) SetLayoutProperties(properties map[string]string) error {
	var year, month, day int
	var err error

	for k, v := range properties {
		switch k {
		case constants.LayoutFieldYear:
			if year, err = strconv.Atoi(v); err != nil {
				return fmt.Errorf("error parsing year %s: %w", v, err)
			}
		case constants.LayoutFieldMonth:
			if month, err = strconv.Atoi(v); err != nil {
				return fmt.Errorf("error parsing month %s: %w", v, err)
			}
		case constants.LayoutFieldDay:
			if day, err = strconv.Atoi(v); err != nil {
				return fmt.Errorf("error parsing day %s: %w", v, err)
			}
		case constants.LayoutFieldVariant:
			i.Variant = v
		default:
			i.Properties[k] = v
		}
	}
	if year == 0 || month == 0 || day == 0 {
		return fmt.Errorf("no date found in %s", i.OriginalName)
	}
	i.Date = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return nil
}
