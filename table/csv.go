package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const utf8BOM = "\ufeff"

var ErrNoHeader = errors.New("no header row")

// opts

type CsvOpts func(*CsvConfig)

func WithCsvDelimiter(delimiter rune) CsvOpts {
	return func(c *CsvConfig) {
		c.Delimiter = delimiter
	}
}

func WithCsvComment(comment rune) CsvOpts {
	return func(c *CsvConfig) {
		c.Comment = comment
	}
}

// WithCsvLazyQuotes allows quotes to appear in unquoted fields and non-doubled quotes in quoted fields
func WithCsvLazyQuotes(lazy bool) CsvOpts {
	return func(c *CsvConfig) {
		c.LazyQuotes = lazy
	}
}

type CsvConfig struct {
	Delimiter  rune
	Comment    rune
	LazyQuotes bool
}

func newCsvConfig(opts ...CsvOpts) *CsvConfig {
	config := &CsvConfig{
		Delimiter: ',', // Default delimiter
		Comment:   0,   // No comment character by default
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// CsvScanner reads a header-plus-rows CSV stream one row at a time
type CsvScanner struct {
	reader *csv.Reader
	header []string
	line   int
}

// NewCsvScanner reads the header row from r. A stream with no header row at all
// returns ErrNoHeader; a header with no data rows is valid.
func NewCsvScanner(r io.Reader, opts ...CsvOpts) (*CsvScanner, error) {
	config := newCsvConfig(opts...)

	reader := csv.NewReader(r)
	reader.Comma = config.Delimiter
	reader.Comment = config.Comment
	reader.LazyQuotes = config.LazyQuotes
	// every row must match the header width
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	return &CsvScanner{
		reader: reader,
		header: header,
		line:   1,
	}, nil
}

func (s *CsvScanner) Header() []string {
	return s.header
}

// Next returns the next row, or io.EOF when the stream is exhausted
func (s *CsvScanner) Next() ([]string, error) {
	row, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading row %d: %w", s.line, err)
	}
	s.line++
	return row, nil
}

// ReadCsvFile reads a whole CSV file into a Table
func ReadCsvFile(path string, opts ...CsvOpts) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	s, err := NewCsvScanner(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	res := New(s.Header())
	for {
		row, err := s.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", path, err)
		}
		res.Rows = append(res.Rows, row)
	}
}
