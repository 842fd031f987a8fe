// Package storage persists uploaded images and returns their public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	PostFolder    = "social-posts"
	ProfileFolder = "social-profiles"
)

// Image is an uploaded image whose MIME type has already been checked
type Image struct {
	Body        io.Reader
	ContentType string
	Extension   string // with leading dot, e.g. ".png"
	Size        int64
}

// ImageStore stores images under a folder and returns a URL clients can fetch
type ImageStore interface {
	Save(ctx context.Context, folder string, img Image) (string, error)
}

func objectKey(folder, ext string) string {
	return path.Join(strings.Trim(folder, "/"), uuid.NewString()+ext)
}

// LocalStore writes images below a directory that the router serves at /uploads
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *LocalStore) Save(ctx context.Context, folder string, img Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := objectKey(folder, img.Extension)
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create file %s: %w", target, err)
	}
	_, err = io.Copy(f, img.Body)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("write file %s: %w", target, err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close file %s: %w", target, closeErr)
	}
	return s.baseURL + "/uploads/" + key, nil
}
