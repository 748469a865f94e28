package columnar

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/apache/arrow/go/v10/parquet"
	"github.com/apache/arrow/go/v10/parquet/compress"
	"github.com/apache/arrow/go/v10/parquet/file"
	"github.com/apache/arrow/go/v10/parquet/pqarrow"
	"github.com/dsa-lake/data-lander/constants"
	"github.com/dsa-lake/data-lander/table"
)

// Extension is the file extension of encoded artifacts, without the dot
const Extension = constants.ColumnarExtension

// rows per parquet row group
const rowGroupSize int64 = 64 * 1024

// Encode writes the table as a snappy compressed parquet file and returns the bytes.
// Every column is a nullable UTF8 column; empty cells are written as null.
func Encode(t *table.Table) ([]byte, error) {
	if t == nil || t.NumColumns() == 0 {
		return nil, fmt.Errorf("cannot encode a table with no columns")
	}
	mem := memory.NewGoAllocator()

	tbl := toArrow(t, mem)
	defer tbl.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithCreatedBy(constants.AppName),
	)
	var buf bytes.Buffer
	if err := pqarrow.WriteTable(tbl, &buf, rowGroupSize, props, pqarrow.DefaultWriterProps()); err != nil {
		return nil, fmt.Errorf("writing parquet: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads parquet bytes produced by Encode back into a Table.
// Null cells are read as empty strings.
func Decode(ctx context.Context, data []byte) (*table.Table, error) {
	mem := memory.NewGoAllocator()
	tbl, err := readArrowTable(ctx, data, mem)
	if err != nil {
		return nil, err
	}
	defer tbl.Release()

	return fromArrow(tbl)
}

func schemaFor(columns []string) *arrow.Schema {
	fields := make([]arrow.Field, len(columns))
	for i, c := range columns {
		fields[i] = arrow.Field{Name: c, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func toArrow(t *table.Table, mem memory.Allocator) arrow.Table {
	schema := schemaFor(t.Columns)

	cols := make([]arrow.Array, t.NumColumns())
	for c := range t.Columns {
		b := array.NewStringBuilder(mem)
		b.Reserve(t.NumRows())
		for _, row := range t.Rows {
			if row[c] == "" {
				b.AppendNull()
				continue
			}
			b.Append(row[c])
		}
		cols[c] = b.NewArray()
		b.Release()
	}

	rec := array.NewRecord(schema, cols, int64(t.NumRows()))
	for _, c := range cols {
		c.Release()
	}
	defer rec.Release()

	return array.NewTableFromRecords(schema, []arrow.Record{rec})
}

func readArrowTable(ctx context.Context, data []byte, mem memory.Allocator) (arrow.Table, error) {
	pf, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening parquet: %w", err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("creating arrow reader: %w", err)
	}
	tbl, err := reader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading parquet: %w", err)
	}
	return tbl, nil
}

func fromArrow(tbl arrow.Table) (*table.Table, error) {
	fields := tbl.Schema().Fields()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}
	res := table.New(columns)

	numRows := int(tbl.NumRows())
	res.Rows = make([][]string, numRows)
	for r := range res.Rows {
		res.Rows[r] = make([]string, len(columns))
	}

	for c := range fields {
		row := 0
		for _, chunk := range tbl.Column(c).Data().Chunks() {
			strs, ok := chunk.(*array.String)
			if !ok {
				return nil, fmt.Errorf("column %s has type %s, expected utf8", fields[c].Name, chunk.DataType())
			}
			for i := 0; i < strs.Len(); i++ {
				if !strs.IsNull(i) {
					res.Rows[row][c] = strs.Value(i)
				}
				row++
			}
		}
	}
	return res, nil
}
