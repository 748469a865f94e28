package columnar

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/dsa-lake/data-lander/table"
)

type ColumnSchema struct {
	Name     string
	Type     string
	Nullable bool
}

// FileInfo describes an encoded parquet file
type FileInfo struct {
	Columns []*ColumnSchema
	NumRows int64
	Size    int
	// Sample holds up to the requested number of leading rows
	Sample *table.Table
}

// Describe decodes the schema, row count and a sample of rows of a parquet file
func Describe(ctx context.Context, data []byte, sampleRows int) (*FileInfo, error) {
	mem := memory.NewGoAllocator()
	tbl, err := readArrowTable(ctx, data, mem)
	if err != nil {
		return nil, err
	}
	defer tbl.Release()

	info := &FileInfo{
		NumRows: tbl.NumRows(),
		Size:    len(data),
	}
	for _, f := range tbl.Schema().Fields() {
		info.Columns = append(info.Columns, &ColumnSchema{
			Name:     f.Name,
			Type:     f.Type.String(),
			Nullable: f.Nullable,
		})
	}

	t, err := fromArrow(tbl)
	if err != nil {
		return nil, fmt.Errorf("sampling rows: %w", err)
	}
	if sampleRows < t.NumRows() {
		t.Rows = t.Rows[:sampleRows]
	}
	info.Sample = t
	return info, nil
}
