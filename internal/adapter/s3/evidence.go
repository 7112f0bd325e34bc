// Package s3 implements evidence file storage on S3-compatible object
// storage. Objects are addressed as s3://<bucket>/<prefix>/<uuid>.<ext>.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/config"
	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

// allowedTypes maps accepted evidence content types to their key extension.
// Image formats plus a single document format, per the upload contract.
var allowedTypes = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"application/pdf": "pdf",
}

type s3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Storage uploads and garbage-collects evidence objects.
type Storage struct {
	client  s3Client
	bucket  string
	prefix  string
	maxSize int64
}

// NewStorage creates a Storage from StorageConfig, resolving AWS credentials
// from the default chain. Endpoint override enables MinIO in development.
func NewStorage(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Storage{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.KeyPrefix, "/"),
		maxSize: cfg.MaxSizeBytes,
	}, nil
}

// NewStorageWithClient wires an existing client; used by tests.
func NewStorageWithClient(client s3Client, bucket, prefix string, maxSize int64) *Storage {
	return &Storage{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), maxSize: maxSize}
}

// Upload validates and stores an evidence file, returning its URI reference.
// Validation failures and transport failures both surface as
// *domain.UploadError so callers can abort before any record is written.
func (s *Storage) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", &domain.UploadError{Reason: "unsupported_type",
			Cause: fmt.Errorf("content type %q not accepted", contentType)}
	}
	if int64(len(data)) > s.maxSize {
		return "", &domain.UploadError{Reason: "too_large",
			Cause: fmt.Errorf("%d bytes exceeds limit of %d", len(data), s.maxSize)}
	}
	if len(data) == 0 {
		return "", &domain.UploadError{Reason: "transport", Cause: fmt.Errorf("empty file")}
	}

	key := fmt.Sprintf("%s/%s.%s", s.prefix, uuid.New(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", &domain.UploadError{Reason: "transport", Cause: err}
	}

	return s.URIFor(key), nil
}

// URIFor renders the stored URI reference for an object key.
func (s *Storage) URIFor(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}

// KeyFor extracts the object key from a stored URI reference. Returns false
// for URIs pointing at a different bucket.
func (s *Storage) KeyFor(uri string) (string, bool) {
	want := fmt.Sprintf("s3://%s/", s.bucket)
	if !strings.HasPrefix(uri, want) {
		return "", false
	}
	return strings.TrimPrefix(uri, want), true
}

// StoredObject describes one evidence object for garbage collection.
type StoredObject struct {
	Key          string
	LastModified time.Time
}

// ListObjects returns every object under the evidence prefix.
func (s *Storage) ListObjects(ctx context.Context) ([]StoredObject, error) {
	var (
		objects []StoredObject
		token   *string
	)
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix + "/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list evidence objects: %w", err)
		}
		for _, obj := range out.Contents {
			objects = append(objects, StoredObject{
				Key:          aws.ToString(obj.Key),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		if out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}
	return objects, nil
}

// Delete removes an evidence object. Used only by garbage collection;
// referenced evidence is never deleted.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete evidence object %s: %w", key, err)
	}
	return nil
}
