package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dsa-lake/data-lander/archive"
	"github.com/dsa-lake/data-lander/artifact_source"
	"github.com/dsa-lake/data-lander/constants"
	"github.com/dsa-lake/data-lander/pipeline"
	"github.com/dsa-lake/data-lander/publish"
	"github.com/dsa-lake/data-lander/storage"
	"github.com/dsa-lake/data-lander/table"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
)

// Config is the configuration of a run. It is decoded from an optional HCL file,
// then overridden from the environment and finally from command line flags.
type Config struct {
	// Sources are the archive URLs or local paths, processed in order
	Sources []string `hcl:"sources,optional"`
	Mode    string   `hcl:"mode,optional"`
	// Prefix overrides the destination prefix derived from the archive name
	Prefix        *string `hcl:"prefix"`
	PrefixStyle   string  `hcl:"prefix_style,optional"`
	ArchiveLayout string  `hcl:"archive_layout,optional"`

	Column    string   `hcl:"column,optional"`
	AllowList []string `hcl:"allow_list,optional"`
	TempDir   string   `hcl:"temp_dir,optional"`
	Workers   int      `hcl:"workers,optional"`

	MaxNestingDepth  int   `hcl:"max_nesting_depth,optional"`
	MaxExpandedBytes int64 `hcl:"max_expanded_bytes,optional"`

	PutTimeoutSecs     int     `hcl:"put_timeout_secs,optional"`
	PublishConcurrency int64   `hcl:"publish_concurrency,optional"`
	PublishRate        float64 `hcl:"publish_rate,optional"`
	DownloadRetries    int     `hcl:"download_retries,optional"`

	Csv     *CsvConfig      `hcl:"csv,block"`
	Storage *storage.Config `hcl:"storage,block"`
}

type CsvConfig struct {
	Delimiter  *string `hcl:"delimiter"`
	Comment    *string `hcl:"comment"`
	LazyQuotes *bool   `hcl:"lazy_quotes"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Mode:               string(pipeline.DefaultMode),
		PrefixStyle:        string(artifact_source.PrefixStyleDashed),
		ArchiveLayout:      constants.DefaultArchiveLayout,
		Column:             constants.DefaultCategoryColumn,
		AllowList:          append([]string(nil), constants.DefaultAllowList...),
		MaxNestingDepth:    constants.DefaultMaxNestingDepth,
		MaxExpandedBytes:   constants.DefaultMaxExpandedBytes,
		PutTimeoutSecs:     int(publish.DefaultPutTimeout / time.Second),
		PublishConcurrency: publish.DefaultMaxConcurrency,
		DownloadRetries:    4,
		Storage: &storage.Config{
			Backend: storage.S3StoreIdentifier,
		},
	}
}

// Load returns the default configuration overlaid with the HCL file at path, if path is set
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	if err := ParseFile(path, c); err != nil {
		return nil, err
	}
	// a file with no storage block keeps the default backend
	if c.Storage == nil {
		c.Storage = &storage.Config{Backend: storage.S3StoreIdentifier}
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = storage.S3StoreIdentifier
	}
	return c, nil
}

// LoadEnvFile loads variables from a .env file into the process environment.
// Existing variables are not overwritten; a missing default file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		return godotenv.Load()
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	if err := godotenv.Load(expanded); err != nil {
		return fmt.Errorf("error loading env file %s: %w", expanded, err)
	}
	return nil
}

// ApplyEnv overrides the configuration from the environment, using lookup to read variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var sources []string
	if v, ok := lookup(constants.EnvURL); ok && strings.TrimSpace(v) != "" {
		sources = append(sources, strings.TrimSpace(v))
	}
	if v, ok := lookup(constants.EnvDownloadURLs); ok && strings.TrimSpace(v) != "" {
		urls, err := ParseList(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.EnvDownloadURLs, err)
		}
		sources = append(sources, urls...)
	}
	if len(sources) > 0 {
		c.Sources = sources
	}

	if c.Storage == nil {
		c.Storage = &storage.Config{Backend: storage.S3StoreIdentifier}
	}
	if v, ok := lookup(constants.EnvStorageBackend); ok && v != "" {
		c.Storage.Backend = v
	}
	if v, ok := lookup(constants.EnvBucket); ok && v != "" {
		c.Storage.Bucket = v
	}
	if v, ok := lookup(constants.EnvRegion); ok && v != "" {
		c.SetRegion(v)
	}
	if v, ok := lookup(constants.EnvStorageEndpoint); ok && v != "" {
		c.SetEndpoint(v)
	}
	if v, ok := lookup(constants.EnvPrefix); ok {
		c.Prefix = &v
	}
	if v, ok := lookup(constants.EnvMode); ok && v != "" {
		c.Mode = v
	}
	if v, ok := lookup(constants.EnvAllowList); ok && strings.TrimSpace(v) != "" {
		values, err := ParseList(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.EnvAllowList, err)
		}
		c.AllowList = values
	}
	if v, ok := lookup(constants.EnvTmpDir); ok && v != "" {
		c.TempDir = v
	}
	return nil
}

// SetRegion sets the region of the configured backend
func (c *Config) SetRegion(region string) {
	switch c.Storage.Backend {
	case storage.MinioStoreIdentifier:
		if c.Storage.Minio == nil {
			c.Storage.Minio = &storage.MinioConnection{}
		}
		c.Storage.Minio.Region = &region
	default:
		if c.Storage.Aws == nil {
			c.Storage.Aws = &storage.AwsConnection{}
		}
		c.Storage.Aws.Region = &region
	}
}

// SetEndpoint sets the endpoint of the configured backend. For the file backend this is the root directory.
func (c *Config) SetEndpoint(endpoint string) {
	switch c.Storage.Backend {
	case storage.MinioStoreIdentifier:
		if c.Storage.Minio == nil {
			c.Storage.Minio = &storage.MinioConnection{}
		}
		c.Storage.Minio.Endpoint = endpoint
	case storage.GcsStoreIdentifier:
		if c.Storage.Gcp == nil {
			c.Storage.Gcp = &storage.GcpConnection{}
		}
		c.Storage.Gcp.Endpoint = &endpoint
	case storage.FileStoreIdentifier:
		c.Storage.Root = endpoint
	default:
		if c.Storage.Aws == nil {
			c.Storage.Aws = &storage.AwsConnection{}
		}
		c.Storage.Aws.EndpointUrl = &endpoint
	}
}

// ParseList parses a JSON array of strings or a comma separated list
func ParseList(value string) ([]string, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "[") {
		var res []string
		if err := json.Unmarshal([]byte(value), &res); err != nil {
			return nil, err
		}
		return res, nil
	}
	var res []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res, nil
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := pipeline.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.Prefix == nil {
		if err := artifact_source.PrefixStyle(c.PrefixStyle).Validate(); err != nil {
			errs = append(errs, err)
		}
		if c.ArchiveLayout == "" {
			errs = append(errs, errors.New("an archive layout or an explicit prefix is required"))
		}
	}
	if strings.TrimSpace(c.Column) == "" {
		errs = append(errs, errors.New("column must not be empty"))
	}
	if len(c.AllowList) == 0 {
		errs = append(errs, errors.New("allow list must not be empty"))
	}
	if c.MaxNestingDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_nesting_depth must be positive, got %d", c.MaxNestingDepth))
	}
	if c.MaxExpandedBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_expanded_bytes must be positive, got %d", c.MaxExpandedBytes))
	}
	if c.PutTimeoutSecs <= 0 {
		errs = append(errs, fmt.Errorf("put_timeout_secs must be positive, got %d", c.PutTimeoutSecs))
	}
	if c.PublishConcurrency < 0 || c.PublishRate < 0 || c.Workers < 0 || c.DownloadRetries < 0 {
		errs = append(errs, errors.New("workers, download_retries, publish_concurrency and publish_rate must not be negative"))
	}
	if c.Csv != nil {
		if err := c.Csv.validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Storage == nil {
		errs = append(errs, errors.New("a storage block is required"))
	} else if err := c.Storage.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateSources checks that at least one source is configured
func (c *Config) ValidateSources() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("no archive to process, set %s or %s, or pass a source argument", constants.EnvURL, constants.EnvDownloadURLs)
	}
	return nil
}

// Limits returns the extraction limits
func (c *Config) Limits() archive.Limits {
	return archive.Limits{
		MaxDepth: c.MaxNestingDepth,
		MaxBytes: c.MaxExpandedBytes,
	}
}

func (c *Config) PutTimeout() time.Duration {
	return time.Duration(c.PutTimeoutSecs) * time.Second
}

// ExpandedTempDir returns the temp dir with ~ expanded, or the empty string for the system default
func (c *Config) ExpandedTempDir() (string, error) {
	if c.TempDir == "" {
		return "", nil
	}
	return homedir.Expand(c.TempDir)
}

// CsvOpts returns the scanner options for the csv block
func (c *Config) CsvOpts() []table.CsvOpts {
	if c.Csv == nil {
		return nil
	}
	var opts []table.CsvOpts
	if c.Csv.Delimiter != nil {
		r, _ := utf8.DecodeRuneInString(*c.Csv.Delimiter)
		opts = append(opts, table.WithCsvDelimiter(r))
	}
	if c.Csv.Comment != nil {
		r, _ := utf8.DecodeRuneInString(*c.Csv.Comment)
		opts = append(opts, table.WithCsvComment(r))
	}
	if c.Csv.LazyQuotes != nil {
		opts = append(opts, table.WithCsvLazyQuotes(*c.Csv.LazyQuotes))
	}
	return opts
}

func (c *CsvConfig) validate() error {
	var errs []error
	if c.Delimiter != nil && utf8.RuneCountInString(*c.Delimiter) != 1 {
		errs = append(errs, fmt.Errorf("csv delimiter must be a single character, got '%s'", *c.Delimiter))
	}
	if c.Comment != nil && utf8.RuneCountInString(*c.Comment) != 1 {
		errs = append(errs, fmt.Errorf("csv comment must be a single character, got '%s'", *c.Comment))
	}
	return errors.Join(errs...)
}

// LogValue summarises the configuration for logging
func (c *Config) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("sources", len(c.Sources)),
		slog.String("mode", c.Mode),
		slog.String("column", c.Column),
		slog.Int("allow_list", len(c.AllowList)),
	}
	if c.Storage != nil {
		attrs = append(attrs, slog.String("backend", c.Storage.Backend), slog.String("bucket", c.Storage.Bucket))
	}
	if c.Prefix != nil {
		attrs = append(attrs, slog.String("prefix", *c.Prefix))
	}
	return slog.GroupValue(attrs...)
}
