package storage

import (
	"context"
	"time"
)

// FileMetadata represents metadata about a stored file
type FileMetadata struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type"`
	LastModified time.Time         `json:"last_modified"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// StoreOptions provides options for storing files
type StoreOptions struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Overwrite   bool              `json:"overwrite,omitempty"`
}

// FileStorage provides an abstraction for attachment operations
// This interface supports both local filesystem and cloud storage implementations
type FileStorage interface {
	// Store saves a file under the given storage key
	Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error

	// Retrieve gets a file by its storage key
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes a file by its storage key
	Delete(ctx context.Context, key string) error

	// Exists checks if a file exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// GetMetadata returns metadata for a file
	GetMetadata(ctx context.Context, key string) (*FileMetadata, error)

	// GenerateURL creates an access URL for a file
	// Cloud implementations return an object URL, local storage returns
	// a path under its configured base URL
	GenerateURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Close cleans up any resources used by the storage implementation
	Close() error
}

// StorageConfig represents configuration for storage providers
type StorageConfig struct {
	Type     string            `json:"type" yaml:"type"`           // "local", "s3", "mock"
	BasePath string            `json:"base_path" yaml:"base_path"` // For local storage
	Bucket   string            `json:"bucket" yaml:"bucket"`       // For cloud storage
	Region   string            `json:"region" yaml:"region"`       // For cloud storage
	Options  map[string]string `json:"options" yaml:"options"`     // Provider-specific options
}
