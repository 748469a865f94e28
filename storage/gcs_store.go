package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

const GcsStoreIdentifier = "gcs"

// GcsStore writes objects to Google Cloud Storage
type GcsStore struct {
	client *storage.Client
}

func NewGcsStore(ctx context.Context, conn *GcpConnection) (*GcsStore, error) {
	if conn == nil {
		conn = &GcpConnection{}
	}
	opts, err := conn.GetClientOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed setting GCP Storage client config: %w", err)
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Storage client: %w", err)
	}
	return &GcsStore{client: client}, nil
}

func (s *GcsStore) Identifier() string {
	return GcsStoreIdentifier
}

func (s *GcsStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	// cancelling the writer context aborts the upload
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = parquetContentType
	if _, err := w.Write(data); err != nil {
		cancel()
		_ = w.Close()
		return classifyGcsError(err)
	}
	if err := w.Close(); err != nil {
		return classifyGcsError(err)
	}
	return nil
}

func (s *GcsStore) Close() error {
	return s.client.Close()
}

func classifyGcsError(err error) *Error {
	if errors.Is(err, storage.ErrBucketNotExist) {
		return &Error{Kind: ClassifyStatus(http.StatusNotFound), StatusCode: http.StatusNotFound, Err: err}
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		code := ""
		if len(apiErr.Errors) > 0 {
			code = apiErr.Errors[0].Reason
		}
		return newError(apiErr.Code, code, err)
	}
	return newError(0, "", err)
}
