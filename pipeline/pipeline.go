package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dsa-lake/data-lander/archive"
	"github.com/dsa-lake/data-lander/collector"
	"github.com/dsa-lake/data-lander/columnar"
	"github.com/dsa-lake/data-lander/constants"
	"github.com/dsa-lake/data-lander/context_values"
	"github.com/dsa-lake/data-lander/events"
	"github.com/dsa-lake/data-lander/filter"
	"github.com/dsa-lake/data-lander/lander_error"
	"github.com/dsa-lake/data-lander/observable"
	"github.com/dsa-lake/data-lander/publish"
	"github.com/dsa-lake/data-lander/table"
	"github.com/dsa-lake/data-lander/types"
	"github.com/dsa-lake/data-lander/worker"
)

type PipelineOption func(*Pipeline)

func WithMode(mode Mode) PipelineOption {
	return func(p *Pipeline) {
		p.mode = mode
	}
}

func WithExtractor(extractor *archive.Extractor) PipelineOption {
	return func(p *Pipeline) {
		p.extractor = extractor
	}
}

func WithPool(pool *worker.Pool) PipelineOption {
	return func(p *Pipeline) {
		p.pool = pool
	}
}

// Pipeline processes one archive at a time: extract, filter, regroup and publish
type Pipeline struct {
	observable.Dispatcher

	mode      Mode
	extractor *archive.Extractor
	filter    *filter.Filter
	pool      *worker.Pool
	publisher *publish.Publisher
	csvFiles  *types.ExtensionSet
}

func New(f *filter.Filter, publisher *publish.Publisher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		mode:      DefaultMode,
		extractor: archive.NewExtractor(),
		filter:    f,
		pool:      worker.NewPool(0),
		publisher: publisher,
		csvFiles:  types.NewExtensionSet(".csv"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Mode() Mode {
	return p.mode
}

// Run processes the archive at archivePath, publishing artifacts below prefix.
// The summary is returned even when Run fails, describing what was done before the failure.
func (p *Pipeline) Run(ctx context.Context, archivePath, prefix string) (*Summary, error) {
	executionId := executionIdFromContext(ctx)
	start := time.Now()
	summary := &Summary{
		Source: archivePath,
		Prefix: prefix,
		Mode:   p.mode,
	}

	p.notify(ctx, events.NewStartedEvent(executionId, archivePath, string(p.mode)))
	slog.Info("processing archive", "archive", archivePath, "mode", p.mode, "prefix", prefix)

	err := p.run(ctx, executionId, archivePath, prefix, summary)

	summary.Duration = time.Since(start)
	p.notify(ctx, events.NewCompletedEvent(executionId, len(summary.Published), summary.RowCount(), summary.Duration, err))
	if err != nil {
		slog.Error("archive processing failed", "archive", archivePath, "published", len(summary.Published), "error", err)
		return summary, err
	}
	slog.Info("archive processed", "archive", archivePath, "files", summary.Files, "published", len(summary.Published), "rows", summary.RowCount(), "duration", summary.Duration)
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, executionId, archivePath, prefix string, summary *Summary) error {
	baseDir, _ := context_values.TempDirFromContext(ctx)
	extractDir, err := os.MkdirTemp(baseDir, constants.AppName+"-extract-")
	if err != nil {
		return fmt.Errorf("error creating extraction directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(extractDir); err != nil {
			slog.Warn("failed to remove extraction directory", "path", extractDir, "error", err)
		}
	}()

	files, err := p.extractor.Extract(ctx, archivePath, extractDir)
	if err != nil {
		// in file mode the files of the branches which did extract are still published;
		// the other modes must not publish a category missing the rows of a failed branch
		if ctx.Err() != nil || p.mode != ModeFile || len(files) == 0 {
			return err
		}
		slog.Error("archive partially extracted", "archive", archivePath, "files", len(files), "error", err)
		summary.Failures = append(summary.Failures, FileFailure{Path: archivePath, Err: err})
		p.notify(ctx, events.NewErrorEvent(executionId, archivePath, err))
	}
	p.notify(ctx, events.NewArchiveExtractedEvent(executionId, files))

	var csvFiles []string
	for _, f := range files {
		if p.csvFiles.Contains(f) {
			csvFiles = append(csvFiles, f)
		}
	}
	summary.Files = len(csvFiles)
	slog.Info("extracted archive", "archive", archivePath, "files", len(files), "csv_files", len(csvFiles))

	switch p.mode {
	case ModeFile:
		return p.runFiles(ctx, executionId, csvFiles, prefix, summary)
	case ModeSplit:
		return p.runSplit(ctx, executionId, csvFiles, prefix, summary)
	default:
		return p.runConsolidate(ctx, executionId, csvFiles, prefix, summary)
	}
}

// runFiles publishes one artifact per file. Failures to read or encode a file are recorded
// and the remaining files processed; a publish failure ends the run.
func (p *Pipeline) runFiles(ctx context.Context, executionId string, files []string, prefix string, summary *Summary) error {
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		artifact, err := worker.Run(ctx, p.pool, path, func() (*types.Artifact, error) {
			return p.filter.Encode(path)
		})
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			slog.Error("failed to process file", "path", path, "kind", lander_error.KindOf(err), "error", err)
			summary.Failures = append(summary.Failures, FileFailure{Path: path, Err: err})
			p.notify(ctx, events.NewErrorEvent(executionId, path, err))
			continue
		}
		if artifact == nil {
			p.skip(ctx, executionId, path, summary)
			continue
		}
		p.notify(ctx, events.NewFileFilteredEvent(executionId, path, artifact.RowCount))

		if err := p.publish(ctx, executionId, publish.Key(prefix, artifact.Name), artifact, summary); err != nil {
			return err
		}
	}

	if len(summary.Failures) > 0 {
		errs := make([]error, len(summary.Failures))
		for i, f := range summary.Failures {
			errs[i] = f.Err
		}
		return fmt.Errorf("%d failures processing %d files: %w", len(summary.Failures), len(files), errors.Join(errs...))
	}
	return nil
}

// runSplit publishes one artifact per category for each file, under a directory per category
func (p *Pipeline) runSplit(ctx context.Context, executionId string, files []string, prefix string, summary *Summary) error {
	for _, path := range files {
		t, err := p.apply(ctx, executionId, path)
		if err != nil {
			return err
		}
		if t.NumRows() == 0 {
			p.skip(ctx, executionId, path, summary)
			continue
		}

		c := collector.New(p.filter.Column, p.filter.AllowList)
		if err := c.Ingest(t, path); err != nil {
			return err
		}
		stem := filter.Stem(path)
		for _, key := range c.Keys() {
			artifact, err := p.encode(ctx, c, key, path)
			if err != nil {
				return err
			}
			if err := p.publish(ctx, executionId, publish.SplitKey(prefix, key, stem), artifact, summary); err != nil {
				return err
			}
		}
	}
	return nil
}

// runConsolidate ingests every file before publishing one artifact per category.
// Any failure ends the run before a partially ingested category can be published.
func (p *Pipeline) runConsolidate(ctx context.Context, executionId string, files []string, prefix string, summary *Summary) error {
	c := collector.New(p.filter.Column, p.filter.AllowList)
	for _, path := range files {
		t, err := p.apply(ctx, executionId, path)
		if err != nil {
			return err
		}
		if t.NumRows() == 0 {
			p.skip(ctx, executionId, path, summary)
			continue
		}
		if err := c.Ingest(t, path); err != nil {
			return err
		}
	}
	slog.Info("ingested files", "files", len(files), "categories", c.KeyCount(), "tables", c.TableCount())

	for _, key := range c.Keys() {
		artifact, err := p.encode(ctx, c, key, key)
		if err != nil {
			return err
		}
		if err := p.publish(ctx, executionId, publish.Key(prefix, key), artifact, summary); err != nil {
			return err
		}
	}
	return nil
}

// apply filters the file on a worker
func (p *Pipeline) apply(ctx context.Context, executionId, path string) (*table.Table, error) {
	t, err := worker.Run(ctx, p.pool, path, func() (*table.Table, error) {
		return p.filter.Apply(path)
	})
	if err != nil {
		return nil, err
	}
	p.notify(ctx, events.NewFileFilteredEvent(executionId, path, int64(t.NumRows())))
	return t, nil
}

// encode consolidates the category and encodes it on a worker
func (p *Pipeline) encode(ctx context.Context, c *collector.Collector, key, source string) (*types.Artifact, error) {
	t, err := c.Consolidate(key)
	if err != nil {
		return nil, err
	}
	rows := int64(t.NumRows())
	return worker.Run(ctx, p.pool, source, func() (*types.Artifact, error) {
		data, err := columnar.Encode(t)
		if err != nil {
			return nil, lander_error.Encoding(source, rows, err)
		}
		return types.NewArtifact(key, source, data, rows), nil
	})
}

func (p *Pipeline) publish(ctx context.Context, executionId, key string, artifact *types.Artifact, summary *Summary) error {
	res, err := p.publisher.Publish(ctx, key, artifact)
	if err != nil {
		return err
	}
	if summary.published(res.Key) {
		slog.Warn("destination key reused, previous object overwritten", "key", res.Key, "source", artifact.Source)
		summary.Overwritten = append(summary.Overwritten, res.Key)
	}
	summary.Published = append(summary.Published, res)
	p.notify(ctx, events.NewArtifactPublishedEvent(executionId, res.Key, res.Rows, res.Bytes))
	return nil
}

func (p *Pipeline) skip(ctx context.Context, executionId, path string, summary *Summary) {
	summary.Skipped = append(summary.Skipped, path)
	p.notify(ctx, events.NewFileSkippedEvent(executionId, path, "no matching rows"))
}

// notify raises the event; observer failures are logged and do not affect the run
func (p *Pipeline) notify(ctx context.Context, e events.Event) {
	if err := p.NotifyObservers(ctx, e); err != nil {
		slog.Warn("observer failed", "event", fmt.Sprintf("%T", e), "error", err)
	}
}

func executionIdFromContext(ctx context.Context) string {
	executionId, err := context_values.ExecutionIdFromContext(ctx)
	if err != nil {
		return context_values.NewExecutionId()
	}
	return executionId
}
