package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/dsa-lake/data-lander/lander_error"
)

const (
	S3StoreIdentifier = "s3"

	parquetContentType = "application/vnd.apache.parquet"
)

// s3PutAPI is the subset of the S3 client used by S3Store
type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes objects with the AWS SDK
type S3Store struct {
	client s3PutAPI
	region string
}

func NewS3Store(ctx context.Context, conn *AwsConnection) (*S3Store, error) {
	if conn == nil {
		conn = &AwsConnection{}
	}
	if err := conn.Validate(); err != nil {
		return nil, fmt.Errorf("invalid aws connection: %w", err)
	}
	cfg, err := conn.GetClientConfiguration(ctx)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(*cfg, func(o *s3.Options) {
		if endpoint := conn.endpoint(); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		if conn.S3ForcePathStyle != nil {
			o.UsePathStyle = *conn.S3ForcePathStyle
		}
	})
	return &S3Store{client: client, region: cfg.Region}, nil
}

func (s *S3Store) Identifier() string {
	return S3StoreIdentifier
}

func (s *S3Store) Region() string {
	return s.region
}

func (s *S3Store) Put(ctx context.Context, bucket, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(parquetContentType),
	})
	if err != nil {
		return classifyS3Error(err)
	}
	return nil
}

func classifyS3Error(err error) *Error {
	statusCode := 0
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		statusCode = respErr.HTTPStatusCode()
	}

	code := ""
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
	}

	if statusCode == 0 && code == "" {
		var sendErr *smithyhttp.RequestSendError
		if errors.As(err, &sendErr) {
			if kind, ok := classifyTransport(err); ok {
				return &Error{Kind: kind, Err: err}
			}
			return &Error{Kind: lander_error.TransmissionDispatch, Err: err}
		}
	}
	return newError(statusCode, code, err)
}
