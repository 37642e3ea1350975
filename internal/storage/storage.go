// Package storage uploads user images to object storage and returns their public URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uploader stores an object and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, bucket, object string, r io.Reader, size int64, contentType string) (string, error)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectName returns "<unix millis>-<uuid>-<original name>" with the original
// name reduced to a safe base name.
func ObjectName(original string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(original, `\`, "/"))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), uuid.NewString(), base)
}

func publicURL(baseURL, bucket, object string) string {
	return strings.TrimRight(baseURL, "/") + "/" + bucket + "/" + object
}
