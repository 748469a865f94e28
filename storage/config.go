package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Config selects and configures the storage backend
type Config struct {
	// Backend is one of s3, minio, gcs, file or memory
	Backend string `hcl:"backend,optional"`
	Bucket  string `hcl:"bucket,optional"`
	// Root is the directory used by the file backend
	Root string `hcl:"root,optional"`

	Aws   *AwsConnection   `hcl:"aws,block"`
	Minio *MinioConnection `hcl:"minio,block"`
	Gcp   *GcpConnection   `hcl:"gcp,block"`
}

var backends = []string{S3StoreIdentifier, MinioStoreIdentifier, GcsStoreIdentifier, FileStoreIdentifier, MemoryStoreIdentifier}

// RequiresBucket returns whether the backend writes to a remote bucket
func (c *Config) RequiresBucket() bool {
	return c.Backend != FileStoreIdentifier && c.Backend != MemoryStoreIdentifier
}

func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(backends, c.Backend) {
		errs = append(errs, fmt.Errorf("unknown storage backend '%s', expected one of %v", c.Backend, backends))
	}
	if c.RequiresBucket() && c.Bucket == "" {
		errs = append(errs, fmt.Errorf("a bucket is required for the %s backend", c.Backend))
	}
	if c.Backend == FileStoreIdentifier && c.Root == "" {
		errs = append(errs, fmt.Errorf("a root directory is required for the file backend"))
	}
	if c.Aws != nil {
		if err := c.Aws.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Backend == MinioStoreIdentifier {
		if c.Minio == nil {
			errs = append(errs, fmt.Errorf("a minio block is required for the minio backend"))
		} else if err := c.Minio.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New creates the store for the configured backend
func New(ctx context.Context, c *Config) (Store, error) {
	switch c.Backend {
	case S3StoreIdentifier:
		return NewS3Store(ctx, c.Aws)
	case MinioStoreIdentifier:
		return NewMinioStore(c.Minio)
	case GcsStoreIdentifier:
		return NewGcsStore(ctx, c.Gcp)
	case FileStoreIdentifier:
		return NewFileStore(c.Root)
	case MemoryStoreIdentifier:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend '%s'", c.Backend)
	}
}
