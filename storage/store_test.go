package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/dsa-lake/data-lander/lander_error"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   lander_error.TransmissionKind
	}{
		{301, lander_error.TransmissionLocation},
		{400, lander_error.TransmissionMalformed},
		{401, lander_error.TransmissionAuth},
		{403, lander_error.TransmissionAuth},
		{404, lander_error.TransmissionNotFound},
		{408, lander_error.TransmissionTimeout},
		{429, lander_error.TransmissionTransientServer},
		{500, lander_error.TransmissionTransientServer},
		{503, lander_error.TransmissionTransientServer},
		{409, lander_error.TransmissionUnknown},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.status))
		})
	}
}

func awsResponseError(status int, code string) error {
	return &smithy.OperationError{
		ServiceID:     "S3",
		OperationName: "PutObject",
		Err: &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
				Err:      &smithy.GenericAPIError{Code: code, Message: "synthetic"},
			},
		},
	}
}

func TestClassifyS3Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want lander_error.TransmissionKind
	}{
		{"access denied", awsResponseError(403, "AccessDenied"), lander_error.TransmissionAuth},
		{"permanent redirect", awsResponseError(301, "PermanentRedirect"), lander_error.TransmissionLocation},
		{"wrong region header", awsResponseError(400, "AuthorizationHeaderMalformed"), lander_error.TransmissionLocation},
		{"missing bucket", awsResponseError(404, "NoSuchBucket"), lander_error.TransmissionNotFound},
		{"invalid request", awsResponseError(400, "InvalidArgument"), lander_error.TransmissionMalformed},
		{"server error", awsResponseError(502, "BadGateway"), lander_error.TransmissionTransientServer},
		{
			name: "request not sent",
			err: &smithy.OperationError{
				ServiceID: "S3",
				Err:       &smithyhttp.RequestSendError{Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}},
			},
			want: lander_error.TransmissionDispatch,
		},
		{
			name: "deadline",
			err:  &smithy.OperationError{ServiceID: "S3", Err: &smithyhttp.RequestSendError{Err: context.DeadlineExceeded}},
			want: lander_error.TransmissionTimeout,
		},
		{"unclassified", errors.New("boom"), lander_error.TransmissionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyS3Error(tt.err)
			assert.Equal(t, tt.want, got.Kind)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.want, KindOf(fmt.Errorf("wrapped: %w", got)))
		})
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Store_Put(t *testing.T) {
	fake := &fakeS3{}
	s := &S3Store{client: fake}

	require.NoError(t, s.Put(context.Background(), "bucket", "global-full/2024-01-01/x.parquet", []byte("PAR1")))
	assert.Equal(t, "bucket", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "global-full/2024-01-01/x.parquet", aws.ToString(fake.input.Key))
	assert.Equal(t, int64(4), aws.ToInt64(fake.input.ContentLength))

	fake.err = awsResponseError(403, "AccessDenied")
	err := s.Put(context.Background(), "bucket", "k", nil)
	var storageErr *Error
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, lander_error.TransmissionAuth, storageErr.Kind)
	assert.Equal(t, 403, storageErr.StatusCode)
	assert.Equal(t, "AccessDenied", storageErr.Code)
}

func TestClassifyMinioError(t *testing.T) {
	got := classifyMinioError(minio.ErrorResponse{StatusCode: 404, Code: "NoSuchBucket", BucketName: "b"})
	assert.Equal(t, lander_error.TransmissionNotFound, got.Kind)

	got = classifyMinioError(minio.ErrorResponse{StatusCode: 503, Code: "SlowDown"})
	assert.Equal(t, lander_error.TransmissionTransientServer, got.Kind)
}

func TestClassifyGcsError(t *testing.T) {
	got := classifyGcsError(&googleapi.Error{Code: 403, Message: "forbidden"})
	assert.Equal(t, lander_error.TransmissionAuth, got.Kind)
	assert.Equal(t, 403, got.StatusCode)

	got = classifyGcsError(fmt.Errorf("put: %w", context.DeadlineExceeded))
	assert.Equal(t, lander_error.TransmissionTimeout, got.Kind)
}

func TestError_Error(t *testing.T) {
	err := &Error{Kind: lander_error.TransmissionAuth, StatusCode: 403, Code: "AccessDenied", Err: errors.New("denied")}
	assert.Equal(t, "auth storage failure (status 403, AccessDenied): denied", err.Error())
}

func TestFileStore_Put(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileStore(root)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "lake", "global-full/2024-01-01/facebook.parquet", []byte("PAR1")))
	data, err := os.ReadFile(filepath.Join(root, "lake", "global-full", "2024-01-01", "facebook.parquet"))
	require.NoError(t, err)
	assert.Equal(t, []byte("PAR1"), data)

	// overwrite replaces the object
	require.NoError(t, s.Put(context.Background(), "lake", "global-full/2024-01-01/facebook.parquet", []byte("PAR2")))
	data, err = os.ReadFile(filepath.Join(root, "lake", "global-full", "2024-01-01", "facebook.parquet"))
	require.NoError(t, err)
	assert.Equal(t, []byte("PAR2"), data)

	err = s.Put(context.Background(), "lake", "../../escape.parquet", []byte("x"))
	assert.Equal(t, lander_error.TransmissionMalformed, KindOf(err))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Put(context.Background(), "b", "k1", []byte("a")))

	boom := &Error{Kind: lander_error.TransmissionTransientServer, StatusCode: 500}
	s.FailOn("k2", boom)
	assert.ErrorIs(t, s.Put(context.Background(), "b", "k2", []byte("b")), boom)

	data, ok := s.Get("b", "k1")
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), data)
	assert.Equal(t, []string{"b/k1"}, s.Puts())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Put(ctx, "b", "k3", nil))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "s3", config: Config{Backend: "s3", Bucket: "lake"}},
		{name: "s3 without bucket", config: Config{Backend: "s3"}, wantErr: true},
		{name: "file", config: Config{Backend: "file", Root: "/tmp/lake"}},
		{name: "file without root", config: Config{Backend: "file"}, wantErr: true},
		{name: "memory", config: Config{Backend: "memory"}},
		{name: "minio without block", config: Config{Backend: "minio", Bucket: "lake"}, wantErr: true},
		{
			name:   "minio",
			config: Config{Backend: "minio", Bucket: "lake", Minio: &MinioConnection{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}},
		},
		{name: "unknown", config: Config{Backend: "ftp", Bucket: "lake"}, wantErr: true},
		{
			name:    "aws key without secret",
			config:  Config{Backend: "s3", Bucket: "lake", Aws: &AwsConnection{AccessKey: aws.String("a")}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
