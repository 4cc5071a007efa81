package storage

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"
)

// StorageType represents the type of storage implementation
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
	StorageTypeMock  StorageType = "mock"
)

// Factory creates FileStorage instances based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new storage factory
func NewFactory(logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.New()
	}
	return &Factory{logger: logger}
}

// Create creates a FileStorage instance based on the provided configuration
func (f *Factory) Create(config *StorageConfig) (FileStorage, error) {
	if config == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	storageType := StorageType(strings.ToLower(config.Type))

	var store FileStorage
	var err error

	switch storageType {
	case StorageTypeLocal:
		store, err = f.createLocalStorage(config)
	case StorageTypeS3:
		store, err = f.createS3Storage(config)
	case StorageTypeMock:
		store = NewMockFileStorage()
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", config.Type, err)
	}

	f.logger.WithFields(logrus.Fields{
		"type":   storageType,
		"bucket": config.Bucket,
		"path":   config.BasePath,
	}).Info("File storage initialized")

	return store, nil
}

// createLocalStorage creates a local filesystem storage implementation
func (f *Factory) createLocalStorage(config *StorageConfig) (FileStorage, error) {
	basePath := config.BasePath
	if basePath == "" {
		basePath = "./storage"
	}

	return NewLocalFileStorage(basePath, config.Options["base_url"])
}

// createS3Storage creates an AWS S3 storage implementation
func (f *Factory) createS3Storage(config *StorageConfig) (FileStorage, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("s3 storage requires a bucket")
	}

	awsConfig := &aws.Config{}
	if config.Region != "" {
		awsConfig.Region = aws.String(config.Region)
	}
	if endpoint := config.Options["endpoint"]; endpoint != "" {
		// Custom endpoints (localstack, minio) need path-style addressing
		awsConfig.Endpoint = aws.String(endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return NewS3FileStorage(s3.New(sess), config.Bucket), nil
}

// CreateFromConfig is a convenience function to create storage from config
func CreateFromConfig(config *StorageConfig) (FileStorage, error) {
	return NewFactory(nil).Create(config)
}
