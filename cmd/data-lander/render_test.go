package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/dsa-lake/data-lander/columnar"
	"github.com/dsa-lake/data-lander/pipeline"
	"github.com/dsa-lake/data-lander/publish"
	"github.com/dsa-lake/data-lander/table"
	"github.com/stretchr/testify/assert"
)

func TestRenderSummaries(t *testing.T) {
	summaries := []*pipeline.Summary{
		{
			Source: "sor-global-2024-01-31-full.zip",
			Published: []*publish.Result{
				{Key: "global-full/2024-01-31/facebook.parquet", Rows: 12, Bytes: 2048, Duration: time.Second},
				{Key: "global-full/2024-01-31/x.parquet", Rows: 3, Bytes: 512, Duration: time.Second},
			},
			Skipped:     []string{"empty.csv"},
			Failures:    []pipeline.FileFailure{{Path: "bad.csv", Err: errors.New("required column missing")}},
			Overwritten: []string{"global-full/2024-01-31/x.parquet"},
		},
	}

	var buf bytes.Buffer
	renderSummaries(&buf, summaries)
	out := buf.String()
	assert.Contains(t, out, "global-full/2024-01-31/facebook.parquet")
	assert.Contains(t, out, "2 artifacts")
	assert.Contains(t, out, "15")
	assert.Contains(t, out, "empty.csv")
	assert.Contains(t, out, "required column missing")
	assert.Contains(t, out, "Overwritten")
}

func TestRenderFileInfo(t *testing.T) {
	sample := table.New([]string{"platform_name", "id"})
	sample.Rows = [][]string{{"Facebook", "1"}}
	info := &columnar.FileInfo{
		Columns: []*columnar.ColumnSchema{
			{Name: "platform_name", Type: "utf8", Nullable: true},
			{Name: "id", Type: "utf8", Nullable: true},
		},
		NumRows: 1,
		Size:    300,
		Sample:  sample,
	}

	var buf bytes.Buffer
	renderFileInfo(&buf, "facebook.parquet", info)
	out := buf.String()
	assert.Contains(t, out, "facebook.parquet: 1 rows, 300 bytes")
	assert.Contains(t, out, "platform_name")
	assert.Contains(t, out, "Facebook")
}

func TestRootCommand(t *testing.T) {
	root := rootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"run", "extract", "inspect"}, names)
}
