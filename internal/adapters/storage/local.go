package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalFileStorage implements FileStorage for the local filesystem
type LocalFileStorage struct {
	basePath string
	baseURL  string // Optional base URL for generating URLs
}

// NewLocalFileStorage creates a new LocalFileStorage instance
func NewLocalFileStorage(basePath, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, NewStorageError("NewLocalFileStorage", "", err)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, NewStorageError("NewLocalFileStorage", "", err)
	}

	return &LocalFileStorage{
		basePath: absPath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Store implements FileStorage.Store
func (l *LocalFileStorage) Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error {
	if err := l.validateKey(key); err != nil {
		return NewStorageError("Store", key, err)
	}

	filePath := l.getFilePath(key)

	if opts != nil && !opts.Overwrite {
		if _, err := os.Stat(filePath); err == nil {
			return NewStorageError("Store", key, ErrFileAlreadyExists)
		}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return NewStorageError("Store", key, err)
	}

	// Write to a temp file first so the final rename is atomic
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return NewStorageError("Store", key, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return NewStorageError("Store", key, err)
	}

	if opts != nil && len(opts.Metadata) > 0 {
		// Sidecar write failures are non-fatal, the file itself is stored
		l.storeMetadata(key, opts.Metadata)
	}

	return nil
}

// Retrieve implements FileStorage.Retrieve
func (l *LocalFileStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if err := l.validateKey(key); err != nil {
		return nil, NewStorageError("Retrieve", key, err)
	}

	data, err := os.ReadFile(l.getFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStorageError("Retrieve", key, ErrFileNotFound)
		}
		return nil, NewStorageError("Retrieve", key, err)
	}

	return data, nil
}

// Delete implements FileStorage.Delete
func (l *LocalFileStorage) Delete(ctx context.Context, key string) error {
	if err := l.validateKey(key); err != nil {
		return NewStorageError("Delete", key, err)
	}

	if err := os.Remove(l.getFilePath(key)); err != nil {
		if os.IsNotExist(err) {
			return NewStorageError("Delete", key, ErrFileNotFound)
		}
		return NewStorageError("Delete", key, err)
	}

	// Metadata sidecar cleanup is best effort
	os.Remove(l.getMetadataPath(key))

	return nil
}

// Exists implements FileStorage.Exists
func (l *LocalFileStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := l.validateKey(key); err != nil {
		return false, NewStorageError("Exists", key, err)
	}

	if _, err := os.Stat(l.getFilePath(key)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, NewStorageError("Exists", key, err)
	}

	return true, nil
}

// GetMetadata implements FileStorage.GetMetadata
func (l *LocalFileStorage) GetMetadata(ctx context.Context, key string) (*FileMetadata, error) {
	if err := l.validateKey(key); err != nil {
		return nil, NewStorageError("GetMetadata", key, err)
	}

	stat, err := os.Stat(l.getFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStorageError("GetMetadata", key, ErrFileNotFound)
		}
		return nil, NewStorageError("GetMetadata", key, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	metadata := &FileMetadata{
		Key:          key,
		Size:         stat.Size(),
		ContentType:  contentType,
		LastModified: stat.ModTime(),
		ETag:         fmt.Sprintf("%d-%d", stat.Size(), stat.ModTime().Unix()),
	}

	if customMetadata, err := l.loadMetadata(key); err == nil {
		metadata.Metadata = customMetadata
	}

	return metadata, nil
}

// GenerateURL implements FileStorage.GenerateURL
func (l *LocalFileStorage) GenerateURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := l.validateKey(key); err != nil {
		return "", NewStorageError("GenerateURL", key, err)
	}

	exists, err := l.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", NewStorageError("GenerateURL", key, ErrFileNotFound)
	}

	if l.baseURL != "" {
		return fmt.Sprintf("%s/%s", l.baseURL, key), nil
	}

	return fmt.Sprintf("file://%s", l.getFilePath(key)), nil
}

// Close implements FileStorage.Close
func (l *LocalFileStorage) Close() error {
	return nil
}

func (l *LocalFileStorage) validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	// Prevent directory traversal
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}

	return nil
}

func (l *LocalFileStorage) getFilePath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

func (l *LocalFileStorage) getMetadataPath(key string) string {
	return l.getFilePath(key) + ".metadata"
}

func (l *LocalFileStorage) storeMetadata(key string, metadata map[string]string) error {
	var lines []string
	for k, v := range metadata {
		lines = append(lines, fmt.Sprintf("%s=%s", k, v))
	}

	return os.WriteFile(l.getMetadataPath(key), []byte(strings.Join(lines, "\n")), 0o644)
}

func (l *LocalFileStorage) loadMetadata(key string) (map[string]string, error) {
	data, err := os.ReadFile(l.getMetadataPath(key))
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		}
	}

	return metadata, nil
}
