package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Storage is the blob store behind message attachments.
type Storage interface {
	// Save stores a file at the given path.
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Get retrieves a file from the given path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file at the given path. Deleting a missing file is
	// not an error.
	Delete(ctx context.Context, path string) error

	// GetURL returns a public URL for the file.
	GetURL(ctx context.Context, path string) (string, error)

	// GetSignedURL returns a temporary signed URL for private files.
	GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

// Config holds storage configuration.
type Config struct {
	Type       string // local or s3
	BasePath   string // local storage root
	BaseURL    string // public URL base
	Bucket     string // s3 bucket
	Region     string // s3 region ("auto" for Cloudflare R2)
	AccessKey  string // s3 credentials
	SecretKey  string // s3 credentials
	Endpoint   string // custom endpoint (Cloudflare R2)
	PublicRead bool   // objects publicly readable
}

// NewStorage creates a storage backend from configuration.
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
