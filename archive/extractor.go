package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsa-lake/data-lander/constants"
	"github.com/dsa-lake/data-lander/lander_error"
)

// Limits bound a single Extract call, including all nested expansions
type Limits struct {
	// MaxDepth is the maximum number of nested container levels below the top level container
	MaxDepth int
	// MaxBytes is the maximum total number of bytes materialized on disk
	MaxBytes int64
}

func DefaultLimits() Limits {
	return Limits{
		MaxDepth: constants.DefaultMaxNestingDepth,
		MaxBytes: constants.DefaultMaxExpandedBytes,
	}
}

type ExtractorOption func(*Extractor)

func WithLimits(limits Limits) ExtractorOption {
	return func(e *Extractor) {
		e.limits = limits
	}
}

// WithTempDir sets the directory in which temporary holders for nested containers are created
func WithTempDir(dir string) ExtractorOption {
	return func(e *Extractor) {
		e.tempDir = dir
	}
}

// WithFormats replaces the registered container formats
func WithFormats(ctors ...func() Format) ExtractorOption {
	return func(e *Extractor) {
		e.formats = NewFormatLookup(ctors...)
	}
}

// Extractor recursively expands containers to a directory tree
type Extractor struct {
	limits  Limits
	tempDir string
	formats *FormatLookup
}

func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		limits:  DefaultLimits(),
		formats: NewFormatLookup(Formats...),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsContainer returns whether name has the extension of a registered container format
func (e *Extractor) IsContainer(name string) bool {
	_, ok := e.formats.ForName(name)
	return ok
}

// Extensions returns the extensions of the registered container formats
func (e *Extractor) Extensions() []string {
	return e.formats.Extensions()
}

// budget is shared by every level of one Extract call
type budget struct {
	remaining int64
}

// Extract expands the container at containerPath into destDir and returns the path of every file
// materialized on disk, in the container's native entry order. An entry which is itself a container
// is recorded, then expanded into a sibling directory named after the entry without its extension,
// and its files follow it in the result.
//
// A failing nested container fails its own branch only: the error is recorded and the walk carries
// on with the following entries. On failure the paths materialized are returned alongside the error,
// which joins the failure of every branch.
func (e *Extractor) Extract(ctx context.Context, containerPath, destDir string) ([]string, error) {
	b := &budget{remaining: e.limits.MaxBytes}
	return e.extract(ctx, containerPath, containerPath, destDir, 0, b)
}

// extract reads the container at containerPath; source is the path failures are attributed to,
// which differs from containerPath for a nested container read from its temporary holder
func (e *Extractor) extract(ctx context.Context, source, containerPath, destDir string, depth int, b *budget) ([]string, error) {
	if depth > e.limits.MaxDepth {
		return nil, lander_error.Structural(source, fmt.Errorf("%w (max %d)", lander_error.ErrDepthExceeded, e.limits.MaxDepth))
	}

	stat, err := os.Stat(containerPath)
	if err != nil {
		return nil, lander_error.Structural(source, err)
	}
	if stat.Size() == 0 {
		slog.Warn("container is empty, nothing to extract", "path", source)
		return nil, nil
	}

	format, ok := e.formats.ForName(containerPath)
	if !ok {
		return nil, lander_error.Structural(source, fmt.Errorf("unsupported container format"))
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, lander_error.Structural(destDir, err)
	}

	slog.Debug("extracting container", "path", source, "format", format.Identifier(), "depth", depth)

	var res []string
	var branchErrs []error
	walkErr := format.Walk(ctx, containerPath, func(entry Entry, r io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := safeJoin(destDir, entry.Name)
		if err != nil {
			return lander_error.Structural(source, fmt.Errorf("entry %q: %w", entry.Name, err))
		}

		if entry.IsDir {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return lander_error.Structural(target, err)
			}
			return nil
		}

		if err := e.writeEntry(ctx, target, entry, r, b); err != nil {
			return err
		}
		res = append(res, target)

		if !e.IsContainer(entry.Name) {
			return nil
		}
		nested, err := e.extractNested(ctx, target, depth, b)
		res = append(res, nested...)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("nested container failed, continuing with sibling entries", "path", target, "error", err)
			branchErrs = append(branchErrs, err)
		}
		return nil
	})
	if walkErr != nil {
		var landerErr *lander_error.Error
		if !errors.As(walkErr, &landerErr) && ctx.Err() == nil {
			walkErr = lander_error.Structural(source, walkErr)
		}
		if ctx.Err() != nil {
			return res, walkErr
		}
		branchErrs = append(branchErrs, walkErr)
	}
	return res, errors.Join(branchErrs...)
}

// extractNested copies the nested container at path to a temporary holder and expands it into
// a directory next to path named after it without its extension
func (e *Extractor) extractNested(ctx context.Context, path string, depth int, b *budget) ([]string, error) {
	holderDir, err := os.MkdirTemp(e.tempDir, "nested-*")
	if err != nil {
		return nil, lander_error.Structural(path, fmt.Errorf("creating temporary holder: %w", err))
	}
	defer os.RemoveAll(holderDir)

	holder := filepath.Join(holderDir, filepath.Base(path))
	if err := copyFile(ctx, path, holder); err != nil {
		return nil, lander_error.Structural(path, fmt.Errorf("copying nested container: %w", err))
	}

	nestedDir := TrimExtension(path)
	slog.Debug("expanding nested container", "path", path, "destination", nestedDir)
	return e.extract(ctx, path, holder, nestedDir, depth+1, b)
}

func (e *Extractor) writeEntry(ctx context.Context, target string, entry Entry, r io.Reader, b *budget) error {
	if entry.Size > b.remaining {
		return lander_error.Structural(target, fmt.Errorf("%w: entry declares %d bytes, %d remaining", lander_error.ErrSizeExceeded, entry.Size, b.remaining))
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return lander_error.Structural(target, err)
	}

	f, err := os.Create(target)
	if err != nil {
		return lander_error.Structural(target, err)
	}
	defer f.Close()

	// read one byte more than allowed so that overflow is detectable
	limit := b.remaining
	if limit < math.MaxInt64 {
		limit++
	}
	n, err := io.Copy(f, io.LimitReader(&contextReader{ctx: ctx, r: r}, limit))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return lander_error.Structural(target, err)
	}
	if n > b.remaining {
		b.remaining = 0
		return lander_error.Structural(target, lander_error.ErrSizeExceeded)
	}
	b.remaining -= n
	return nil
}

// safeJoin joins an entry name onto root, rejecting names which would resolve outside root
func safeJoin(root, name string) (string, error) {
	local := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if strings.HasPrefix(name, "/") || !filepath.IsLocal(local) {
		return "", lander_error.ErrPathTraversal
	}
	return filepath.Join(root, local), nil
}

func copyFile(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, &contextReader{ctx: ctx, r: in}); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
