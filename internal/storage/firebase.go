package storage

import (
	"context"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/pkg/errors"
)

const gcsPublicURL = "https://storage.googleapis.com"

// FirebaseUploader writes into the project's Firebase Storage bucket; the
// logical bucket becomes a folder inside it.
type FirebaseUploader struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewFirebaseUploader(bucket *gcs.BucketHandle, bucketName string) *FirebaseUploader {
	return &FirebaseUploader{bucket: bucket, bucketName: bucketName}
}

func (u *FirebaseUploader) Upload(ctx context.Context, folder, object string, r io.Reader, _ int64, contentType string) (string, error) {
	name := folder + "/" + object
	w := u.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "write object")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "finalize object")
	}
	return publicURL(gcsPublicURL, u.bucketName, name), nil
}
