package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const MinioStoreIdentifier = "minio"

// MinioConnection configures an S3 compatible endpoint
type MinioConnection struct {
	Endpoint  string  `hcl:"endpoint"`
	Region    *string `hcl:"region"`
	AccessKey string  `hcl:"access_key"`
	SecretKey string  `hcl:"secret_key"`
	UseSSL    *bool   `hcl:"use_ssl"`
}

func (c *MinioConnection) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("minio endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" || strings.TrimSpace(c.SecretKey) == "" {
		return fmt.Errorf("minio access key and secret key are required")
	}
	return nil
}

// MinioStore writes objects to an S3 compatible service with the minio client
type MinioStore struct {
	client *minio.Client
}

func NewMinioStore(conn *MinioConnection) (*MinioStore, error) {
	if conn == nil {
		return nil, fmt.Errorf("minio connection is required")
	}
	if err := conn.Validate(); err != nil {
		return nil, err
	}

	region := defaultAwsRegion
	if conn.Region != nil && *conn.Region != "" {
		region = *conn.Region
	}
	useSSL := true
	if conn.UseSSL != nil {
		useSSL = *conn.UseSSL
	}

	client, err := minio.New(strings.TrimSpace(conn.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(conn.AccessKey), strings.TrimSpace(conn.SecretKey), ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return &MinioStore{client: client}, nil
}

func (s *MinioStore) Identifier() string {
	return MinioStoreIdentifier
}

func (s *MinioStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: parquetContentType,
	})
	if err != nil {
		return classifyMinioError(err)
	}
	return nil
}

func classifyMinioError(err error) *Error {
	errResp := minio.ToErrorResponse(err)
	return newError(errResp.StatusCode, errResp.Code, err)
}
