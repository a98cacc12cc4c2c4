// Package storage stores uploaded product images on a named disk.
//
//   - "local" writes under STORAGE_LOCAL_ROOT and is served at /storage
//   - "s3" writes to an S3-compatible bucket (AWS S3, MinIO, R2)
//
//	storage.Connect()
//	err := storage.Default().Put(ctx, "products/1f3c.webp", r, "image/webp")
//	url := storage.Default().URL("products/1f3c.webp")
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get for a missing object.
var ErrNotFound = errors.New("storage: object not found")

// ErrInvalidPath is returned for paths escaping the disk root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes r to path, creating parent directories as needed.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error

	// Get returns the full content of the object at path.
	Get(ctx context.Context, path string) ([]byte, error)

	Exists(ctx context.Context, path string) bool

	// Delete removes an object. A missing object is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL of path.
	URL(path string) string
}
