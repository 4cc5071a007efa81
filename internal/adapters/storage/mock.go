package storage

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"sync"
	"time"
)

// MockFileStorage is an in-memory implementation of FileStorage for testing
type MockFileStorage struct {
	mu    sync.RWMutex
	files map[string]*mockFile
}

type mockFile struct {
	data         []byte
	metadata     map[string]string
	contentType  string
	lastModified time.Time
	etag         string
}

// NewMockFileStorage creates a new MockFileStorage instance
func NewMockFileStorage() *MockFileStorage {
	return &MockFileStorage{
		files: make(map[string]*mockFile),
	}
}

// Store implements FileStorage.Store
func (m *MockFileStorage) Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error {
	if key == "" {
		return NewStorageError("Store", key, ErrInvalidKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if opts != nil && !opts.Overwrite {
		if _, exists := m.files[key]; exists {
			return NewStorageError("Store", key, ErrFileAlreadyExists)
		}
	}

	contentType := "application/octet-stream"
	if opts != nil && opts.ContentType != "" {
		contentType = opts.ContentType
	} else if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		contentType = ct
	}

	var metadata map[string]string
	if opts != nil && opts.Metadata != nil {
		metadata = make(map[string]string)
		for k, v := range opts.Metadata {
			metadata[k] = v
		}
	}

	now := time.Now()
	m.files[key] = &mockFile{
		data:         append([]byte(nil), data...),
		metadata:     metadata,
		contentType:  contentType,
		lastModified: now,
		etag:         fmt.Sprintf("%d-%d", len(data), now.Unix()),
	}

	return nil
}

// Retrieve implements FileStorage.Retrieve
func (m *MockFileStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, NewStorageError("Retrieve", key, ErrInvalidKey)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	file, exists := m.files[key]
	if !exists {
		return nil, NewStorageError("Retrieve", key, ErrFileNotFound)
	}

	return append([]byte(nil), file.data...), nil
}

// Delete implements FileStorage.Delete
func (m *MockFileStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return NewStorageError("Delete", key, ErrInvalidKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[key]; !exists {
		return NewStorageError("Delete", key, ErrFileNotFound)
	}

	delete(m.files, key)
	return nil
}

// Exists implements FileStorage.Exists
func (m *MockFileStorage) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, NewStorageError("Exists", key, ErrInvalidKey)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.files[key]
	return exists, nil
}

// GetMetadata implements FileStorage.GetMetadata
func (m *MockFileStorage) GetMetadata(ctx context.Context, key string) (*FileMetadata, error) {
	if key == "" {
		return nil, NewStorageError("GetMetadata", key, ErrInvalidKey)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	file, exists := m.files[key]
	if !exists {
		return nil, NewStorageError("GetMetadata", key, ErrFileNotFound)
	}

	var metadata map[string]string
	if file.metadata != nil {
		metadata = make(map[string]string)
		for k, v := range file.metadata {
			metadata[k] = v
		}
	}

	return &FileMetadata{
		Key:          key,
		Size:         int64(len(file.data)),
		ContentType:  file.contentType,
		LastModified: file.lastModified,
		ETag:         file.etag,
		Metadata:     metadata,
	}, nil
}

// GenerateURL implements FileStorage.GenerateURL
func (m *MockFileStorage) GenerateURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if key == "" {
		return "", NewStorageError("GenerateURL", key, ErrInvalidKey)
	}

	exists, err := m.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", NewStorageError("GenerateURL", key, ErrFileNotFound)
	}

	return fmt.Sprintf("mock://storage/%s?expires=%d", key, time.Now().Add(expiry).Unix()), nil
}

// Close implements FileStorage.Close
func (m *MockFileStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files = make(map[string]*mockFile)
	return nil
}

// Reset clears all stored files
func (m *MockFileStorage) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string]*mockFile)
}

// FileCount returns the number of stored files
func (m *MockFileStorage) FileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// HasFile checks if a file exists (without error handling)
func (m *MockFileStorage) HasFile(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[key]
	return exists
}
