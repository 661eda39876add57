// minio.go - S3-compatible object storage for uploaded portfolio files.
package server

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStorage is what the upload handler needs from the blob store.
type ObjectStorage interface {
	// Upload stores data under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Ping(ctx context.Context) error
}

// FileStorage implements ObjectStorage over a MinIO/S3 endpoint.
type FileStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		secure = (u.Scheme == "https")
		return u.Host, secure, nil
	}

	// No scheme provided, treat as host:port (insecure by default for local MinIO).
	return raw, false, nil
}

// NewFileStorage builds the storage client from configuration. The public
// base URL defaults to the storage endpoint when not set explicitly.
func NewFileStorage(cfg Config) (*FileStorage, error) {
	endpoint, secure, err := normaliseEndpoint(cfg.S3Endpoint)
	if err != nil {
		return nil, fmt.Errorf("storage endpoint: %w", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s", scheme, endpoint)
	}

	return &FileStorage{client: client, bucket: cfg.Bucket, baseURL: base}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (fs *FileStorage) EnsureBucket(ctx context.Context) error {
	exists, err := fs.client.BucketExists(ctx, fs.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := fs.client.MakeBucket(ctx, fs.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

func (fs *FileStorage) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := fs.client.PutObject(ctx, fs.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("store object: %w", err)
	}
	return fs.PublicURL(key), nil
}

// PublicURL returns the browser-reachable address of an object.
func (fs *FileStorage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", fs.baseURL, fs.bucket, key)
}

func (fs *FileStorage) Ping(ctx context.Context) error {
	_, err := fs.client.BucketExists(ctx, fs.bucket)
	return err
}
