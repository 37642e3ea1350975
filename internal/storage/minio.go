package storage

import (
	"context"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PublicURL string
}

// MinioUploader writes to an S3 compatible store. Buckets are created on first use.
type MinioUploader struct {
	client    *minio.Client
	publicURL string

	mu    sync.Mutex
	ready map[string]bool
}

func NewMinioUploader(cfg MinioConfig) (*MinioUploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}
	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http://"
		if cfg.UseSSL {
			scheme = "https://"
		}
		publicURL = scheme + cfg.Endpoint
	}
	return &MinioUploader{client: client, publicURL: publicURL, ready: map[string]bool{}}, nil
}

func (u *MinioUploader) ensureBucket(ctx context.Context, bucket string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.ready[bucket] {
		return nil
	}
	exists, err := u.client.BucketExists(ctx, bucket)
	if err != nil {
		return errors.Wrap(err, "check bucket")
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return errors.Wrap(err, "create bucket")
		}
	}
	u.ready[bucket] = true
	return nil
}

func (u *MinioUploader) Upload(ctx context.Context, bucket, object string, r io.Reader, size int64, contentType string) (string, error) {
	if err := u.ensureBucket(ctx, bucket); err != nil {
		return "", err
	}
	_, err := u.client.PutObject(ctx, bucket, object, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", errors.Wrap(err, "put object")
	}
	return publicURL(u.publicURL, bucket, object), nil
}
