package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dayplanner/internal/domain"
)

// mockPutter is a hand-written test double for putter.
type mockPutter struct {
	putObject func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error)
}

func (m *mockPutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.putObject(ctx, in)
}

// compile-time check: mockPutter must satisfy putter.
var _ putter = (*mockPutter)(nil)

func TestS3Uploader_Upload_OK(t *testing.T) {
	var got *s3.PutObjectInput
	var body []byte
	u := newS3Uploader(&mockPutter{
		putObject: func(_ context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			got = in
			body, _ = io.ReadAll(in.Body)
			return &s3.PutObjectOutput{}, nil
		},
	}, S3Config{Bucket: "exports", PublicBaseURL: "https://cdn.example.com/"})

	url, err := u.Upload(context.Background(), "plans/abc.pdf", []byte("%PDF-1.3"), "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/plans/abc.pdf", url)
	assert.Equal(t, "exports", *got.Bucket)
	assert.Equal(t, "plans/abc.pdf", *got.Key)
	assert.Equal(t, "application/pdf", *got.ContentType)
	assert.Equal(t, "%PDF-1.3", string(body))
}

func TestS3Uploader_Upload_DefaultURL(t *testing.T) {
	u := newS3Uploader(&mockPutter{
		putObject: func(context.Context, *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			return &s3.PutObjectOutput{}, nil
		},
	}, S3Config{Bucket: "exports", Endpoint: "http://minio:9000/"})

	url, err := u.Upload(context.Background(), "a.pdf", nil, "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/exports/a.pdf", url)
}

func TestS3Uploader_Upload_Error(t *testing.T) {
	u := newS3Uploader(&mockPutter{
		putObject: func(context.Context, *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			return nil, errors.New("access denied")
		},
	}, S3Config{Bucket: "exports"})

	_, err := u.Upload(context.Background(), "a.pdf", nil, "application/pdf")

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestNewS3Uploader_RequiresBucket(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), S3Config{})

	assert.Error(t, err)
}

// TestNewS3Uploader_PathStyleAgainstCustomEndpoint drives the real SDK client
// against a local server standing in for MinIO.
func TestNewS3Uploader_PathStyleAgainstCustomEndpoint(t *testing.T) {
	var method, path, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := NewS3Uploader(context.Background(), S3Config{
		Bucket:    "exports",
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		AccessKey: "minio",
		SecretKey: "minio-secret",
	})
	require.NoError(t, err)

	url, err := u.Upload(context.Background(), "plans/abc.pdf", []byte("%PDF-1.3"), "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/exports/plans/abc.pdf", url)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/exports/plans/abc.pdf", path)
	assert.Equal(t, "application/pdf", contentType)
}
