package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gifImage = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

type fakeStore struct {
	saved []storage.Image
	err   error
}

func (s *fakeStore) Save(_ context.Context, folder string, img storage.Image) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, img)
	return "https://cdn.example.com/" + folder + "/image" + img.Extension, nil
}

func multipartBody(t *testing.T, field string, files ...[]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("content", "hello"))
	for _, data := range files {
		part, err := w.CreateFormFile(field, "upload.bin")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func runUpload(t *testing.T, store storage.ImageStore, maxBytes int64, body io.Reader, contentType string) (string, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/post/create", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	c := e.NewContext(req, httptest.NewRecorder())

	var url string
	h := ImageUpload("image", storage.PostFolder, store, maxBytes)(func(c echo.Context) error {
		url = UploadedImageURL(c)
		return nil
	})
	return url, h(c)
}

func TestImageUpload_StoresImage(t *testing.T) {
	store := &fakeStore{}
	body, ctype := multipartBody(t, "image", gifImage)

	url, err := runUpload(t, store, 1<<20, body, ctype)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/social-posts/image.gif", url)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "image/gif", store.saved[0].ContentType)
	assert.Equal(t, int64(len(gifImage)), store.saved[0].Size)
}

func TestImageUpload_PassesThroughWithoutFile(t *testing.T) {
	store := &fakeStore{}

	body, ctype := multipartBody(t, "image")
	url, err := runUpload(t, store, 1<<20, body, ctype)
	require.NoError(t, err)
	assert.Empty(t, url)

	url, err = runUpload(t, store, 1<<20, strings.NewReader(`{"content":"hi"}`), echo.MIMEApplicationJSON)
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.Empty(t, store.saved)
}

func TestImageUpload_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		files   [][]byte
		max     int64
		message string
	}{
		{"not an image", [][]byte{[]byte("plain text pretending to be a picture")}, 1 << 20, "Not an image! Please upload an image file."},
		{"too large", [][]byte{append(gifImage, make([]byte, 2<<20)...)}, 1 << 20, "Image must be 1MB or smaller"},
		{"two files", [][]byte{gifImage, gifImage}, 1 << 20, "Only one image may be uploaded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			body, ctype := multipartBody(t, "image", tt.files...)

			_, err := runUpload(t, store, tt.max, body, ctype)
			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			assert.Equal(t, tt.message, appErr.Message)
			assert.Empty(t, store.saved)
		})
	}
}

func TestImageUpload_StoreFailureIsUnexpected(t *testing.T) {
	store := &fakeStore{err: errors.New("s3 unavailable")}
	body, ctype := multipartBody(t, "image", gifImage)

	_, err := runUpload(t, store, 1<<20, body, ctype)
	assert.Equal(t, apperror.KindUnexpected, apperror.KindOf(err))
}
