package archive

import (
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
)

const ZipFormatIdentifier = "zip"

func init() {
	// register format
	Formats = append(Formats, NewZipFormat)
}

// ZipFormat expands zip containers
type ZipFormat struct{}

func NewZipFormat() Format {
	return &ZipFormat{}
}

func (z *ZipFormat) Identifier() string {
	return ZipFormatIdentifier
}

func (z *ZipFormat) Extensions() []string {
	return []string{".zip"}
}

func (z *ZipFormat) Walk(ctx context.Context, path string, fn func(e Entry, r io.Reader) error) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("error opening zip %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := z.walkEntry(f, fn); err != nil {
			return err
		}
	}
	return nil
}

func (z *ZipFormat) walkEntry(f *zip.File, fn func(e Entry, r io.Reader) error) error {
	entry := Entry{
		Name:  f.Name,
		IsDir: f.FileInfo().IsDir(),
		Size:  int64(f.UncompressedSize64),
	}
	if entry.IsDir {
		return fn(entry, nil)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("error opening zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	return fn(entry, rc)
}
