package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
)

const (
	uploadedImageKey = "uploadedImage"

	DefaultMaxImageBytes int64 = 5 << 20
)

// ImageUpload accepts at most one image in the multipart field, checks its
// size and sniffed MIME type, stores it in folder and exposes the URL through
// UploadedImageURL. Requests without the field pass through untouched.
func ImageUpload(field, folder string, store storage.ImageStore, maxBytes int64) echo.MiddlewareFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header, err := c.FormFile(field)
			if err != nil {
				if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
					return next(c)
				}
				return apperror.Validation("Invalid multipart form")
			}
			if form := c.Request().MultipartForm; form != nil && len(form.File[field]) > 1 {
				return apperror.Validation("Only one image may be uploaded")
			}
			if header.Size > maxBytes {
				return apperror.Validation(fmt.Sprintf("Image must be %dMB or smaller", maxBytes>>20))
			}

			f, err := header.Open()
			if err != nil {
				return apperror.Unexpected(fmt.Errorf("open upload: %w", err))
			}
			defer f.Close()

			data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
			if err != nil {
				return apperror.Unexpected(fmt.Errorf("read upload: %w", err))
			}
			if int64(len(data)) > maxBytes {
				return apperror.Validation(fmt.Sprintf("Image must be %dMB or smaller", maxBytes>>20))
			}

			mtype := mimetype.Detect(data)
			if !strings.HasPrefix(mtype.String(), "image/") {
				return apperror.Validation("Not an image! Please upload an image file.")
			}

			url, err := store.Save(c.Request().Context(), folder, storage.Image{
				Body:        bytes.NewReader(data),
				ContentType: mtype.String(),
				Extension:   mtype.Extension(),
				Size:        int64(len(data)),
			})
			if err != nil {
				return apperror.Unexpected(err)
			}

			c.Set(uploadedImageKey, url)
			return next(c)
		}
	}
}

// UploadedImageURL returns the URL stored by ImageUpload, empty when the
// request carried no image.
func UploadedImageURL(c echo.Context) string {
	url, _ := c.Get(uploadedImageKey).(string)
	return url
}
