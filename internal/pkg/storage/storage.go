package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidPath  = errors.New("invalid file path")
)

type FileStorage interface {
	// Upload uploads a file and returns the file path/key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download retrieves a file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file
	Delete(ctx context.Context, path string) error

	// GetURL returns a public URL for the file
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)

	// Walk calls fn for every regular file under prefix
	Walk(ctx context.Context, prefix string, fn func(FileInfo) error) error
}

type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

type UploadOptions struct {
	ContentType string
	MaxSize     int64
	AllowedExts []string
}
