package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/dsa-lake/data-lander/archive"
	"github.com/dsa-lake/data-lander/artifact_source"
	"github.com/dsa-lake/data-lander/config"
	"github.com/dsa-lake/data-lander/constants"
	"github.com/dsa-lake/data-lander/context_values"
	"github.com/dsa-lake/data-lander/events"
	"github.com/dsa-lake/data-lander/filter"
	"github.com/dsa-lake/data-lander/logging"
	"github.com/dsa-lake/data-lander/observable"
	"github.com/dsa-lake/data-lander/pipeline"
	"github.com/dsa-lake/data-lander/publish"
	"github.com/dsa-lake/data-lander/rate_limiter"
	"github.com/dsa-lake/data-lander/storage"
	"github.com/dsa-lake/data-lander/types"
	"github.com/dsa-lake/data-lander/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/error_helpers"
	"golang.org/x/time/rate"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] [source...]",
		Short: "Download, extract, filter and publish one or more archives",
		Long: `Download, extract, filter and publish one or more archives.

Sources are URLs or local paths. When none are given, the URL and DOWNLOAD_URLS
environment variables are used.`,
		Run: runRunCmd,
	}

	cmdconfig.OnCmd(cmd).
		AddStringFlag(flagMode, "", "Publish mode: file, split or consolidate").
		AddStringFlag(flagPrefix, "", "Destination prefix, overriding the prefix derived from the archive name").
		AddStringFlag(flagStyle, "", "Derived prefix style: dashed or nested").
		AddStringFlag(flagBucket, "", "Destination bucket").
		AddStringFlag(flagBackend, "", "Storage backend: s3, minio, gcs, file or memory").
		AddStringFlag(flagEndpoint, "", "Storage endpoint, or the root directory for the file backend").
		AddStringFlag(flagRegion, "", "Storage region").
		AddStringFlag(flagColumn, "", "Name of the category column").
		AddStringSliceFlag(flagAllow, nil, "Allowed category values, replacing the configured allow list").
		AddIntFlag(flagWorkers, 0, "Maximum number of files parsed or encoded at once (default GOMAXPROCS)").
		AddStringFlag(flagTempDir, "", "Directory for temporary files").
		AddIntFlag(flagMaxDepth, 0, "Maximum nested archive depth").
		AddIntFlag(flagMaxBytes, 0, "Maximum bytes extracted from one archive").
		AddBoolFlag(flagDryRun, false, "Process archives without publishing, keeping artifacts in memory")

	return cmd
}

func runRunCmd(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	executionId := context_values.NewExecutionId()
	logging.Initialize(executionId)
	ctx = context_values.WithExecutionId(ctx, executionId)

	summaries, err := doRun(ctx, cmd, args)
	if len(summaries) > 0 {
		renderSummaries(os.Stdout, summaries)
	}
	if err != nil {
		exitCode = 1
		error_helpers.ShowError(ctx, err)
	}
}

func doRun(ctx context.Context, cmd *cobra.Command, args []string) ([]*pipeline.Summary, error) {
	c, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	if err := c.ValidateSources(); err != nil {
		return nil, err
	}
	slog.Info("starting run", "config", c)

	// all temporary files for the run live below one directory, removed at the end
	baseDir, err := c.ExpandedTempDir()
	if err != nil {
		return nil, err
	}
	runDir, err := os.MkdirTemp(baseDir, constants.AppName+"-")
	if err != nil {
		return nil, fmt.Errorf("error creating temp directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(runDir); err != nil {
			slog.Warn("failed to remove temp directory", "path", runDir, "error", err)
		}
	}()
	ctx = context_values.WithTempDir(ctx, runDir)

	runner, err := newRunner(ctx, c, runDir)
	if err != nil {
		return nil, err
	}
	locations, err := artifact_source.Discover(c.Sources, types.NewExtensionSet(archive.NewExtractor().Extensions()...))
	if err != nil {
		return nil, err
	}
	return runner.RunAll(ctx, locations)
}

// loadConfig builds the configuration from the config file, the environment and the command flags, in that order
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	if err := config.LoadEnvFile(viper.GetString(flagEnvFile)); err != nil {
		return nil, err
	}
	c, err := config.Load(viper.GetString(flagConfig))
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	applyFlags(cmd, c)
	if len(args) > 0 {
		c.Sources = args
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func applyFlags(cmd *cobra.Command, c *config.Config) {
	changed := cmd.Flags().Changed
	if changed(flagMode) {
		c.Mode = viper.GetString(flagMode)
	}
	if changed(flagPrefix) {
		prefix := viper.GetString(flagPrefix)
		c.Prefix = &prefix
	}
	if changed(flagStyle) {
		c.PrefixStyle = viper.GetString(flagStyle)
	}
	if changed(flagBackend) {
		c.Storage.Backend = viper.GetString(flagBackend)
	}
	if changed(flagDryRun) && viper.GetBool(flagDryRun) {
		c.Storage.Backend = storage.MemoryStoreIdentifier
	}
	if changed(flagBucket) {
		c.Storage.Bucket = viper.GetString(flagBucket)
	}
	if changed(flagRegion) {
		c.SetRegion(viper.GetString(flagRegion))
	}
	if changed(flagEndpoint) {
		c.SetEndpoint(viper.GetString(flagEndpoint))
	}
	if changed(flagColumn) {
		c.Column = viper.GetString(flagColumn)
	}
	if changed(flagAllow) {
		c.AllowList = viper.GetStringSlice(flagAllow)
	}
	if changed(flagWorkers) {
		c.Workers = viper.GetInt(flagWorkers)
	}
	if changed(flagTempDir) {
		c.TempDir = viper.GetString(flagTempDir)
	}
	if changed(flagMaxDepth) {
		c.MaxNestingDepth = viper.GetInt(flagMaxDepth)
	}
	if changed(flagMaxBytes) {
		c.MaxExpandedBytes = viper.GetInt64(flagMaxBytes)
	}
}

// newRunner wires the pipeline for the configuration
func newRunner(ctx context.Context, c *config.Config, tempDir string) (*pipeline.Runner, error) {
	mode, err := pipeline.ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(ctx, c.Storage)
	if err != nil {
		return nil, fmt.Errorf("error creating %s store: %w", c.Storage.Backend, err)
	}
	limiter, err := rate_limiter.NewLimiter(&rate_limiter.Definition{
		Name:           "publish",
		FillRate:       rate.Limit(c.PublishRate),
		BucketSize:     int64(math.Ceil(c.PublishRate)),
		MaxConcurrency: c.PublishConcurrency,
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("publish limiter", "limiter", limiter.String())

	publisher, err := publish.NewPublisher(store, c.Storage.Bucket,
		publish.WithPutTimeout(c.PutTimeout()),
		publish.WithLimiter(limiter))
	if err != nil {
		return nil, err
	}

	f := filter.New(c.Column, types.NewAllowList(c.AllowList), c.CsvOpts()...)
	p := pipeline.New(f, publisher,
		pipeline.WithMode(mode),
		pipeline.WithPool(worker.NewPool(c.Workers)),
		pipeline.WithExtractor(archive.NewExtractor(
			archive.WithLimits(c.Limits()),
			archive.WithTempDir(tempDir),
		)),
	)
	if err := p.AddObserver(observable.ObserverFunc(logEvent)); err != nil {
		return nil, err
	}

	var layout *artifact_source.ArchiveLayout
	if c.Prefix == nil {
		if layout, err = artifact_source.NewArchiveLayout(c.ArchiveLayout); err != nil {
			return nil, err
		}
	}
	httpSource := artifact_source.NewHttpSource(artifact_source.WithRetries(c.DownloadRetries))
	return pipeline.NewRunner(p, httpSource, layout, artifact_source.PrefixStyle(c.PrefixStyle), c.Prefix), nil
}

// logEvent traces pipeline progress
func logEvent(_ context.Context, e events.Event) error {
	switch ev := e.(type) {
	case *events.ArchiveDownloaded:
		slog.Debug("event: archive downloaded", "source", ev.Source, "bytes", ev.Size, "duration", ev.Duration)
	case *events.FileSkipped:
		slog.Debug("event: file skipped", "path", ev.Path, "reason", ev.Reason)
	case *events.Error:
		slog.Debug("event: file failed", "path", ev.Path, "error", ev.Err)
	case *events.ArtifactPublished:
		slog.Debug("event: artifact published", "key", ev.Key, "rows", ev.Rows, "bytes", ev.Bytes)
	}
	return nil
}
