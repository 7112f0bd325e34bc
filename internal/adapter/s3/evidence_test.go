package s3

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

type mockClient struct {
	PutObjectFunc     func(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	DeleteObjectFunc  func(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
	ListObjectsV2Func func(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
}

func (m *mockClient) PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}
	return &awss3.PutObjectOutput{}, nil
}

func (m *mockClient) DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	if m.DeleteObjectFunc != nil {
		return m.DeleteObjectFunc(ctx, params, optFns...)
	}
	return &awss3.DeleteObjectOutput{}, nil
}

func (m *mockClient) ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	if m.ListObjectsV2Func != nil {
		return m.ListObjectsV2Func(ctx, params, optFns...)
	}
	return &awss3.ListObjectsV2Output{}, nil
}

func TestUpload_Success(t *testing.T) {
	t.Parallel()

	var gotKey, gotType string
	mock := &mockClient{
		PutObjectFunc: func(ctx context.Context, params *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
			gotKey = aws.ToString(params.Key)
			gotType = aws.ToString(params.ContentType)
			return &awss3.PutObjectOutput{}, nil
		},
	}

	st := NewStorageWithClient(mock, "evidence-bucket", "evidence", 1024)
	uri, err := st.Upload(context.Background(), []byte("fake-png"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(uri, "s3://evidence-bucket/evidence/") {
		t.Errorf("uri: got %q", uri)
	}
	if !strings.HasSuffix(gotKey, ".png") {
		t.Errorf("key: got %q, want .png suffix", gotKey)
	}
	if gotType != "image/png" {
		t.Errorf("content type: got %q", gotType)
	}

	key, ok := st.KeyFor(uri)
	if !ok || key != gotKey {
		t.Errorf("KeyFor(%q) = (%q, %v), want (%q, true)", uri, key, ok, gotKey)
	}
}

func TestUpload_RejectsUnsupportedType(t *testing.T) {
	t.Parallel()

	st := NewStorageWithClient(&mockClient{}, "b", "evidence", 1024)
	_, err := st.Upload(context.Background(), []byte("x"), "text/html")

	var ue *domain.UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UploadError, got %T: %v", err, err)
	}
	if ue.Reason != "unsupported_type" {
		t.Errorf("reason: got %q", ue.Reason)
	}
	if !errors.Is(err, domain.ErrUpload) {
		t.Error("UploadError must unwrap to ErrUpload")
	}
}

func TestUpload_RejectsOversize(t *testing.T) {
	t.Parallel()

	st := NewStorageWithClient(&mockClient{}, "b", "evidence", 4)
	_, err := st.Upload(context.Background(), []byte("five!"), "image/jpeg")

	var ue *domain.UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UploadError, got %T: %v", err, err)
	}
	if ue.Reason != "too_large" {
		t.Errorf("reason: got %q", ue.Reason)
	}
}

func TestUpload_TransportFailure(t *testing.T) {
	t.Parallel()

	mock := &mockClient{
		PutObjectFunc: func(context.Context, *awss3.PutObjectInput, ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
			return nil, errors.New("connection reset")
		},
	}

	st := NewStorageWithClient(mock, "b", "evidence", 1024)
	_, err := st.Upload(context.Background(), []byte("data"), "application/pdf")

	var ue *domain.UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UploadError, got %T: %v", err, err)
	}
	if ue.Reason != "transport" {
		t.Errorf("reason: got %q", ue.Reason)
	}
}

func TestKeyFor_WrongBucket(t *testing.T) {
	t.Parallel()

	st := NewStorageWithClient(&mockClient{}, "bucket-a", "evidence", 1024)
	if _, ok := st.KeyFor("s3://bucket-b/evidence/x.png"); ok {
		t.Error("KeyFor must reject URIs from other buckets")
	}
}
