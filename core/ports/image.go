package ports

import (
	"context"
	"time"
)

//go:generate mockgen -source=image.go -destination=image_mocks.go -package=ports ImageProvider

type ImageProvider interface {
	GenerateUploadURL(ctx context.Context, objectPath string, contentType string, ttl time.Duration) (string, error)
	ObjectURL(objectPath string) string
}
