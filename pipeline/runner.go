package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dsa-lake/data-lander/artifact_source"
	"github.com/dsa-lake/data-lander/constants"
	"github.com/dsa-lake/data-lander/context_values"
	"github.com/dsa-lake/data-lander/events"
)

// Runner fetches each source archive in turn and runs the pipeline over it
type Runner struct {
	pipeline   *Pipeline
	httpSource *artifact_source.HttpSource
	layout     *artifact_source.ArchiveLayout
	style      artifact_source.PrefixStyle
	// prefix, when set, is used for every archive instead of the derived prefix
	prefix *string
}

func NewRunner(p *Pipeline, httpSource *artifact_source.HttpSource, layout *artifact_source.ArchiveLayout, style artifact_source.PrefixStyle, prefix *string) *Runner {
	return &Runner{
		pipeline:   p,
		httpSource: httpSource,
		layout:     layout,
		style:      style,
		prefix:     prefix,
	}
}

// Prefix returns the destination prefix for the archive at location
func (r *Runner) Prefix(location string) (string, error) {
	if r.prefix != nil {
		return *r.prefix, nil
	}
	if r.layout == nil {
		return "", fmt.Errorf("no archive layout to derive a prefix for %s", location)
	}
	return r.layout.DerivePrefix(location, r.style)
}

// RunAll processes the locations in order and stops at the first failure.
// The summaries of every archive processed so far are returned, including the failed one.
func (r *Runner) RunAll(ctx context.Context, locations []string) ([]*Summary, error) {
	var summaries []*Summary
	for i, location := range locations {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		slog.Info("processing source", "index", i+1, "count", len(locations), "source", location)
		summary, err := r.RunOne(ctx, location)
		if summary != nil {
			summaries = append(summaries, summary)
		}
		if err != nil {
			return summaries, fmt.Errorf("error processing %s: %w", location, err)
		}
	}
	return summaries, nil
}

// RunOne fetches the archive at location and runs the pipeline over it
func (r *Runner) RunOne(ctx context.Context, location string) (*Summary, error) {
	// resolve the prefix first so a badly named archive is not downloaded
	prefix, err := r.Prefix(location)
	if err != nil {
		return nil, err
	}

	baseDir, _ := context_values.TempDirFromContext(ctx)
	downloadDir, err := os.MkdirTemp(baseDir, constants.AppName+"-download-")
	if err != nil {
		return nil, fmt.Errorf("error creating download directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(downloadDir); err != nil {
			slog.Warn("failed to remove download directory", "path", downloadDir, "error", err)
		}
	}()

	start := time.Now()
	source := artifact_source.ForLocation(location, r.httpSource)
	info, err := source.Fetch(ctx, location, downloadDir)
	if err != nil {
		return nil, err
	}
	r.pipeline.notify(ctx, events.NewArchiveDownloadedEvent(executionIdFromContext(ctx), location, info.LocalName, info.Size, time.Since(start)))

	summary, err := r.pipeline.Run(ctx, info.LocalName, prefix)
	if summary != nil {
		summary.Source = location
	}
	return summary, err
}
