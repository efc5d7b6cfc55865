package bucket

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

type GCSBucketService struct {
	client     *storage.Client
	bucketName string
}

var _ BucketService = &GCSBucketService{}

// NewGCSBucketService authenticates with application default credentials.
// Objects are assumed publicly readable via bucket-level IAM; URLs are
// plain storage.googleapis.com links.
func NewGCSBucketService(ctx context.Context, bucketName string) (*GCSBucketService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSBucketService{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (s *GCSBucketService) UploadFile(ctx context.Context, key string, contentType string, r io.Reader) error {
	w := s.client.Bucket(s.bucketName).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("upload object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", key, err)
	}
	return nil
}

func (s *GCSBucketService) GetPublicURL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key)
}

func (s *GCSBucketService) Delete(ctx context.Context, key string) error {
	return s.client.Bucket(s.bucketName).Object(key).Delete(ctx)
}

func (s *GCSBucketService) Close() error {
	return s.client.Close()
}
