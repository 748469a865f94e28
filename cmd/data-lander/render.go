package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dsa-lake/data-lander/columnar"
	"github.com/dsa-lake/data-lander/pipeline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTableWriter(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

var rightAligned = []table.ColumnConfig{
	{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
}

// renderSummaries writes one row per published artifact, then any skipped or failed files
func renderSummaries(w io.Writer, summaries []*pipeline.Summary) {
	tw := newTableWriter(w)
	tw.SetTitle("Published")
	tw.AppendHeader(table.Row{"Source", "Key", "Rows", "Bytes", "Duration"})
	tw.SetColumnConfigs(rightAligned)

	var rows, bytes int64
	var published int
	for _, s := range summaries {
		for _, r := range s.Published {
			tw.AppendRow(table.Row{s.Source, r.Key, r.Rows, r.Bytes, r.Duration.Round(time.Millisecond)})
		}
		rows += s.RowCount()
		bytes += s.Bytes()
		published += len(s.Published)
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d artifacts", published), rows, bytes, ""})
	tw.Render()

	var skipped, failed [][]any
	for _, s := range summaries {
		for _, path := range s.Skipped {
			skipped = append(skipped, []any{s.Source, path})
		}
		for _, f := range s.Failures {
			failed = append(failed, []any{s.Source, f.Path, f.Err.Error()})
		}
	}
	if len(skipped) > 0 {
		tw := newTableWriter(w)
		tw.SetTitle("Skipped (no matching rows)")
		tw.AppendHeader(table.Row{"Source", "File"})
		for _, r := range skipped {
			tw.AppendRow(r)
		}
		tw.Render()
	}
	var overwritten [][]any
	for _, s := range summaries {
		for _, key := range s.Overwritten {
			overwritten = append(overwritten, []any{s.Source, key})
		}
	}
	if len(overwritten) > 0 {
		tw := newTableWriter(w)
		tw.SetTitle("Overwritten (key published more than once)")
		tw.AppendHeader(table.Row{"Source", "Key"})
		for _, r := range overwritten {
			tw.AppendRow(r)
		}
		tw.Render()
	}
	if len(failed) > 0 {
		tw := newTableWriter(w)
		tw.SetTitle("Failed")
		tw.AppendHeader(table.Row{"Source", "File", "Error"})
		for _, r := range failed {
			tw.AppendRow(r)
		}
		tw.Render()
	}
}

// renderFileInfo writes the schema and a sample of a parquet file
func renderFileInfo(w io.Writer, name string, info *columnar.FileInfo) {
	tw := newTableWriter(w)
	tw.SetTitle(fmt.Sprintf("%s: %d rows, %d bytes", name, info.NumRows, info.Size))
	tw.AppendHeader(table.Row{"Column", "Type", "Nullable"})
	for _, c := range info.Columns {
		tw.AppendRow(table.Row{c.Name, c.Type, c.Nullable})
	}
	tw.Render()

	if info.Sample == nil || info.Sample.NumRows() == 0 {
		return
	}
	sample := newTableWriter(w)
	sample.SetTitle("Sample")
	header := make(table.Row, len(info.Sample.Columns))
	for i, c := range info.Sample.Columns {
		header[i] = c
	}
	sample.AppendHeader(header)
	for _, r := range info.Sample.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		sample.AppendRow(row)
	}
	sample.Render()
}
