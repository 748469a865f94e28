package filter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dsa-lake/data-lander/columnar"
	"github.com/dsa-lake/data-lander/lander_error"
	"github.com/dsa-lake/data-lander/table"
	"github.com/dsa-lake/data-lander/types"
)

// Filter retains the rows of a CSV file whose category column holds an allowed value
type Filter struct {
	// Column is the name of the required category column
	Column    string
	AllowList types.AllowList
	CsvOpts   []table.CsvOpts
}

func New(column string, allowList types.AllowList, opts ...table.CsvOpts) *Filter {
	return &Filter{
		Column:    column,
		AllowList: allowList,
		CsvOpts:   opts,
	}
}

// Apply reads the CSV file at path and returns the rows whose category value is in the
// allow list, in source order. A file with a header and no matching rows returns an empty table.
func (f *Filter) Apply(path string) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, lander_error.Structural(path, err)
	}
	defer file.Close()

	scanner, err := table.NewCsvScanner(file, f.CsvOpts...)
	if err != nil {
		return nil, lander_error.Structural(path, err)
	}

	res := table.New(scanner.Header())
	idx := res.ColumnIndex(f.Column)
	if idx < 0 {
		return nil, lander_error.Schema(path, fmt.Errorf("%w: %s", lander_error.ErrMissingColumn, f.Column))
	}

	for {
		row, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, lander_error.Structural(path, err)
		}
		if f.AllowList.Contains(row[idx]) {
			res.Rows = append(res.Rows, row)
		}
	}

	slog.Debug("filtered file", "path", path, "rows", res.NumRows())
	return res, nil
}

// Encode applies the filter to path and encodes the surviving rows.
// If no rows survive it returns a nil artifact and a nil error.
func (f *Filter) Encode(path string) (*types.Artifact, error) {
	t, err := f.Apply(path)
	if err != nil {
		return nil, err
	}

	rowCount := int64(t.NumRows())
	if rowCount == 0 {
		slog.Warn("no matching rows found in file", "path", path, "column", f.Column)
		return nil, nil
	}

	data, err := columnar.Encode(t)
	if err != nil {
		return nil, lander_error.Encoding(path, rowCount, err)
	}
	return types.NewArtifact(Stem(path), path, data, rowCount), nil
}

// Stem returns the base name of path without its extension
func Stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
