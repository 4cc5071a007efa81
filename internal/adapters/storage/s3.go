package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3API is an abstraction over the S3 operations the storage uses
// (helpful for testing)
type S3API interface {
	PutObjectWithContext(aws.Context, *s3.PutObjectInput, ...request.Option) (*s3.PutObjectOutput, error)
	GetObjectWithContext(aws.Context, *s3.GetObjectInput, ...request.Option) (*s3.GetObjectOutput, error)
	DeleteObjectWithContext(aws.Context, *s3.DeleteObjectInput, ...request.Option) (*s3.DeleteObjectOutput, error)
	HeadObjectWithContext(aws.Context, *s3.HeadObjectInput, ...request.Option) (*s3.HeadObjectOutput, error)
}

// S3FileStorage implements FileStorage backed by an S3 bucket
type S3FileStorage struct {
	client S3API
	bucket string
}

// NewS3FileStorage creates a new S3FileStorage instance
func NewS3FileStorage(client S3API, bucket string) *S3FileStorage {
	return &S3FileStorage{
		client: client,
		bucket: bucket,
	}
}

// isS3NotFound reports whether err is a missing-object error
func isS3NotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}

// Store implements FileStorage.Store
func (s *S3FileStorage) Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error {
	if key == "" {
		return NewStorageError("Store", key, ErrInvalidKey)
	}

	if opts != nil && !opts.Overwrite {
		exists, err := s.Exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return NewStorageError("Store", key, ErrFileAlreadyExists)
		}
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if opts != nil {
		if opts.ContentType != "" {
			input.ContentType = aws.String(opts.ContentType)
		}
		if len(opts.Metadata) > 0 {
			input.Metadata = aws.StringMap(opts.Metadata)
		}
	}

	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return NewStorageError("Store", key, err)
	}

	return nil
}

// Retrieve implements FileStorage.Retrieve
func (s *S3FileStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, NewStorageError("Retrieve", key, ErrInvalidKey)
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}

	resp, err := s.client.GetObjectWithContext(ctx, input)
	if err != nil {
		if isS3NotFound(err) {
			return nil, NewStorageError("Retrieve", key, ErrFileNotFound)
		}
		return nil, NewStorageError("Retrieve", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewStorageError("Retrieve", key, err)
	}

	return data, nil
}

// Delete implements FileStorage.Delete
func (s *S3FileStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return NewStorageError("Delete", key, ErrInvalidKey)
	}

	// S3 deletes are idempotent, check first so missing keys surface as errors
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return NewStorageError("Delete", key, ErrFileNotFound)
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}

	if _, err := s.client.DeleteObjectWithContext(ctx, input); err != nil {
		return NewStorageError("Delete", key, err)
	}

	return nil
}

// Exists implements FileStorage.Exists
func (s *S3FileStorage) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, NewStorageError("Exists", key, ErrInvalidKey)
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}

	if _, err := s.client.HeadObjectWithContext(ctx, input); err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, NewStorageError("Exists", key, err)
	}

	return true, nil
}

// GetMetadata implements FileStorage.GetMetadata
func (s *S3FileStorage) GetMetadata(ctx context.Context, key string) (*FileMetadata, error) {
	if key == "" {
		return nil, NewStorageError("GetMetadata", key, ErrInvalidKey)
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}

	resp, err := s.client.HeadObjectWithContext(ctx, input)
	if err != nil {
		if isS3NotFound(err) {
			return nil, NewStorageError("GetMetadata", key, ErrFileNotFound)
		}
		return nil, NewStorageError("GetMetadata", key, err)
	}

	contentType := aws.StringValue(resp.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &FileMetadata{
		Key:          key,
		Size:         aws.Int64Value(resp.ContentLength),
		ContentType:  contentType,
		LastModified: aws.TimeValue(resp.LastModified),
		ETag:         strings.Trim(aws.StringValue(resp.ETag), `"`),
		Metadata:     aws.StringValueMap(resp.Metadata),
	}, nil
}

// GenerateURL implements FileStorage.GenerateURL
// The returned object URL is stable, expiry is not applied
func (s *S3FileStorage) GenerateURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if key == "" {
		return "", NewStorageError("GenerateURL", key, ErrInvalidKey)
	}

	exists, err := s.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", NewStorageError("GenerateURL", key, ErrFileNotFound)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}

// Close implements FileStorage.Close
func (s *S3FileStorage) Close() error {
	return nil
}
