package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

// ImageHandler uploads post images and avatars to object storage.
type ImageHandler struct {
	uploader     storage.Uploader
	postBucket   string
	avatarBucket string
	log          logrus.FieldLogger
	now          func() time.Time
}

func NewImageHandler(uploader storage.Uploader, postBucket, avatarBucket string, log logrus.FieldLogger) *ImageHandler {
	return &ImageHandler{
		uploader:     uploader,
		postBucket:   postBucket,
		avatarBucket: avatarBucket,
		log:          log.WithField("handler", "images"),
		now:          time.Now,
	}
}

// RegisterImageRoutes expects g to require authentication.
func (h *ImageHandler) RegisterImageRoutes(g *echo.Group) {
	g.POST("/upload", h.UploadPostImage)
	g.POST("/upload-avatar", h.UploadAvatar)
}

func (h *ImageHandler) UploadPostImage(c echo.Context) error {
	return h.upload(c, h.postBucket)
}

func (h *ImageHandler) UploadAvatar(c echo.Context) error {
	return h.upload(c, h.avatarBucket)
}

func (h *ImageHandler) upload(c echo.Context, bucket string) error {
	file, err := c.FormFile("image")
	if err != nil {
		return errs.Validation("image file is required")
	}
	contentType := file.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, "image/") {
		return errs.Validation("Only image files are allowed")
	}
	if file.Size > MaxImageSize {
		return errs.Validation("Image must be at most 5MB")
	}

	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "open upload")
	}
	defer src.Close()

	object := storage.ObjectName(file.Filename, h.now())
	url, err := h.uploader.Upload(c.Request().Context(), bucket, object, src, file.Size, contentType)
	if err != nil {
		h.log.WithError(err).WithField("object", object).Error("upload failed")
		return errs.Upstream("Failed to upload image", err)
	}
	return respond(c, http.StatusCreated, "Upload image successfully", echo.Map{"url": url})
}
