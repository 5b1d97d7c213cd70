package storage

import (
	"context"
	"time"
)

// Object describes one stored object.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// UploadOptions mirror the hosted store's write flags.
type UploadOptions struct {
	// Upsert overwrites an existing object at the same path.
	Upsert      bool
	ContentType string
}

// ObjectStore is the object-storage client the pipeline depends on.
type ObjectStore interface {
	// List returns at most limit objects under prefix.
	List(ctx context.Context, bucket, prefix string, limit int) ([]Object, error)

	// Upload writes data at path.
	Upload(ctx context.Context, bucket, path string, data []byte, opts UploadOptions) error

	// PublicURL resolves the public address of path without a network call.
	PublicURL(bucket, path string) string

	// ListFolder returns every object directly or indirectly under folder.
	ListFolder(ctx context.Context, bucket, folder string) ([]Object, error)
}
