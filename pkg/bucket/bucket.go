package bucket

import (
	"context"
	"io"
)

// BucketService uploads keyed objects and resolves them to public URLs.
type BucketService interface {
	UploadFile(ctx context.Context, key string, contentType string, r io.Reader) error
	GetPublicURL(key string) string
	Delete(ctx context.Context, key string) error
}
