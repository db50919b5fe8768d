package s3

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gruzdev-dev/codex-recipes/configs"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
)

type S3Provider struct {
	client       *minio.Client
	bucket       string
	externalHost string
	publicURL    *url.URL
}

// NewS3Provider returns a nil provider when no endpoint is configured, which
// disables recipe image uploads.
func NewS3Provider(cfg *configs.Config) (ports.ImageProvider, error) {
	if cfg.S3.Endpoint == "" {
		return nil, nil
	}
	if cfg.S3.AccessKey == "" {
		return nil, fmt.Errorf("S3 access key is required")
	}
	if cfg.S3.SecretKey == "" {
		return nil, fmt.Errorf("S3 secret key is required")
	}
	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	endpoint := cfg.S3.Endpoint
	useSSL := cfg.S3.UseSSL

	if parsedURL, err := url.Parse(cfg.S3.Endpoint); err == nil && parsedURL.Host != "" {
		endpoint = parsedURL.Host
		switch parsedURL.Scheme {
		case "https":
			useSSL = true
		case "http":
			useSSL = false
		}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.S3.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	host := endpoint
	if cfg.S3.ExternalHost != "" {
		host = cfg.S3.ExternalHost
		scheme = "https"
	}

	return &S3Provider{
		client:       client,
		bucket:       cfg.S3.Bucket,
		externalHost: cfg.S3.ExternalHost,
		publicURL:    &url.URL{Scheme: scheme, Host: host, Path: "/" + cfg.S3.Bucket},
	}, nil
}

func (p *S3Provider) GenerateUploadURL(ctx context.Context, objectPath string, contentType string, ttl time.Duration) (string, error) {
	extraHeaders := make(http.Header)
	extraHeaders.Set("Content-Type", contentType)

	presignedURL, err := p.client.PresignHeader(ctx, http.MethodPut, p.bucket, objectPath, ttl, nil, extraHeaders)
	if err != nil {
		return "", fmt.Errorf("failed to generate upload URL: %w", err)
	}

	if p.externalHost != "" {
		presignedURL.Host = p.externalHost
		if presignedURL.Scheme == "http" {
			presignedURL.Scheme = "https"
		}
	}

	return presignedURL.String(), nil
}

// ObjectURL is the unsigned address the image is served from once uploaded.
func (p *S3Provider) ObjectURL(objectPath string) string {
	u := *p.publicURL
	u.Path = u.Path + "/" + strings.TrimPrefix(objectPath, "/")
	return u.String()
}
