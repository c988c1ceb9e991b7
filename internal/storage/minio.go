// Package storage keeps uploaded document files in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Skotchmaster/doc_service/internal/config"
)

type Blobs struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// normalizeEndpoint strips the scheme minio-go does not accept and derives
// the TLS setting from it.
func normalizeEndpoint(raw string) (host string, secure bool) {
	host = raw
	secure = strings.HasPrefix(raw, "https://")
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		host = u.Host
		secure = u.Scheme == "https"
	}
	return host, secure
}

func objectURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}

// New connects to the bucket named in cfg and creates it when missing.
func New(ctx context.Context, cfg config.S3Config) (*Blobs, error) {
	const op = "storage.New"

	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%s: S3_ENDPOINT is required", op)
	}
	endpoint, secure := normalizeEndpoint(cfg.Endpoint)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: make bucket %q: %w", op, cfg.Bucket, err)
		}
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = client.EndpointURL().String()
	}
	return &Blobs{client: client, bucket: cfg.Bucket, baseURL: base}, nil
}

// Put uploads body under key and returns the object's URL.
func (b *Blobs) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := b.client.PutObject(ctx, b.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("storage.Put %q: %w", key, err)
	}
	return objectURL(b.baseURL, b.bucket, key), nil
}

// Remove deletes key; a missing object is not an error.
func (b *Blobs) Remove(ctx context.Context, key string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("storage.Remove %q: %w", key, err)
	}
	return nil
}
