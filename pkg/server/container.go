package server

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/sirupsen/logrus"

	"invoice-api/internal/adapters/storage"
	"invoice-api/internal/config"
	"invoice-api/internal/database"
	"invoice-api/internal/middleware"
	"invoice-api/internal/repositories"
	"invoice-api/internal/repositories/dynamo"
	"invoice-api/internal/repositories/memory"
	"invoice-api/internal/repositories/sqlite"
	"invoice-api/internal/services"
)

// Container holds all application dependencies. Both entrypoints build
// one: the server at startup, the Lambda during its cold start.
type Container struct {
	Config         *config.Config
	Logger         *logrus.Logger
	Repositories   repositories.RepositoryManager
	FileStorage    storage.FileStorage
	InvoiceService services.InvoiceService

	// AuthService is nil unless a JWT secret is configured
	AuthService *middleware.AuthService
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	logger := newLogger(cfg.Environment)

	repos, err := buildRepositoryManager(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	fileStorage, err := buildFileStorage(cfg, logger)
	if err != nil {
		repos.Close()
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	container := &Container{
		Config:         cfg,
		Logger:         logger,
		Repositories:   repos,
		FileStorage:    fileStorage,
		InvoiceService: services.NewInvoiceService(repos.Invoices(), fileStorage),
	}

	if cfg.AuthEnabled() {
		container.AuthService = middleware.NewAuthService(&middleware.AuthConfig{
			JWTSecret:     cfg.Auth.JWTSecret,
			TokenDuration: cfg.Auth.TokenTTL,
		})
	}

	logger.WithFields(logrus.Fields{
		"repository": cfg.Repository.Type,
		"storage":    cfg.Storage.Type,
		"mode":       config.GetDeploymentMode(),
	}).Info("Application container initialized")

	return container, nil
}

func newLogger(environment string) *logrus.Logger {
	logger := logrus.New()
	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func buildRepositoryManager(cfg *config.Config, logger *logrus.Logger) (repositories.RepositoryManager, error) {
	switch cfg.Repository.Type {
	case "memory":
		return memory.NewManager(logger), nil

	case "sqlite":
		conn := database.NewConnectionManager(&database.ConnectionConfig{
			DatabasePath:    cfg.Repository.DatabasePath,
			MaxOpenConns:    cfg.Repository.MaxOpenConns,
			MaxIdleConns:    cfg.Repository.MaxIdleConns,
			ConnMaxLifetime: time.Hour,
			Logger:          logger,
		})
		if err := conn.Connect(); err != nil {
			return nil, err
		}
		return sqlite.NewManager(conn.GetDB(), logger), nil

	case "dynamodb":
		awsConfig := &aws.Config{}
		if cfg.Repository.Region != "" {
			awsConfig.Region = aws.String(cfg.Repository.Region)
		}
		sess, err := session.NewSession(awsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create aws session: %w", err)
		}
		return dynamo.NewManager(dynamodb.New(sess), cfg.Repository.TableName, logger), nil

	default:
		return nil, fmt.Errorf("unsupported repository type: %s", cfg.Repository.Type)
	}
}

func buildFileStorage(cfg *config.Config, logger *logrus.Logger) (storage.FileStorage, error) {
	return storage.NewFactory(logger).Create(&storage.StorageConfig{
		Type:     cfg.Storage.Type,
		BasePath: cfg.Storage.LocalPath,
		Bucket:   cfg.Storage.Bucket,
		Region:   cfg.Storage.Region,
		Options:  map[string]string{"base_url": cfg.Storage.BaseURL},
	})
}

// HealthCheck verifies the backing services are reachable
func (c *Container) HealthCheck(ctx context.Context) error {
	return c.Repositories.HealthCheck(ctx)
}

// Close cleans up all resources
func (c *Container) Close() error {
	var firstErr error

	if c.FileStorage != nil {
		if err := c.FileStorage.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close file storage: %w", err)
		}
	}

	if c.Repositories != nil {
		if err := c.Repositories.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close repositories: %w", err)
		}
	}

	return firstErr
}
