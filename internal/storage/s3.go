package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader is the part of *manager.Uploader S3Store needs
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store uploads images to Amazon S3 (or compatible APIs)
type S3Store struct {
	uploader Uploader
	bucket   string
	baseURL  string
}

// NewS3Store creates an S3Store. When publicBaseURL is empty the object
// location reported by S3 is returned.
func NewS3Store(client *s3.Client, bucket, publicBaseURL string) *S3Store {
	return NewS3StoreWithUploader(manager.NewUploader(client), bucket, publicBaseURL)
}

func NewS3StoreWithUploader(uploader Uploader, bucket, publicBaseURL string) *S3Store {
	return &S3Store{
		uploader: uploader,
		bucket:   bucket,
		baseURL:  strings.TrimSuffix(publicBaseURL, "/"),
	}
}

func (s *S3Store) Save(ctx context.Context, folder string, img Image) (string, error) {
	if s.bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}
	key := objectKey(folder, img.Extension)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        img.Body,
		ContentType: aws.String(img.ContentType),
	}
	if img.Size > 0 {
		input.ContentLength = aws.Int64(img.Size)
	}

	out, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if s.baseURL != "" {
		return s.baseURL + "/" + key, nil
	}
	return out.Location, nil
}
