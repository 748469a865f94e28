package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

const GzipFormatIdentifier = "gzip"

func init() {
	// register format
	Formats = append(Formats, NewGzipFormat)
}

// GzipFormat expands a single member gzip file into one entry, named after the file without its .gz extension
type GzipFormat struct{}

func NewGzipFormat() Format {
	return &GzipFormat{}
}

func (g *GzipFormat) Identifier() string {
	return GzipFormatIdentifier
}

func (g *GzipFormat) Extensions() []string {
	return []string{".gz"}
}

func (g *GzipFormat) Walk(ctx context.Context, path string, fn func(e Entry, r io.Reader) error) error {
	gzFile, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", path, err)
	}
	defer gzFile.Close()

	gzReader, err := gzip.NewReader(gzFile)
	if err != nil {
		return fmt.Errorf("error creating gzip reader for %s: %w", path, err)
	}
	defer gzReader.Close()
	gzReader.Multistream(false)

	if err := ctx.Err(); err != nil {
		return err
	}
	entry := Entry{
		Name: TrimExtension(filepath.Base(path)),
		Size: -1,
	}
	return fn(entry, gzReader)
}
