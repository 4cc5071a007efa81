package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `validate:"required,oneof=development staging production"`
	Port        string `validate:"required"`
	Repository  RepositoryConfig
	Storage     StorageConfig
	Auth        AuthConfig
}

// RepositoryConfig selects and tunes the invoice repository backend
type RepositoryConfig struct {
	Type         string `validate:"required,oneof=memory sqlite dynamodb"`
	DatabasePath string
	MaxOpenConns int `validate:"min=1"`
	MaxIdleConns int `validate:"min=1"`
	TableName    string
	Region       string
}

// StorageConfig selects and tunes the attachment storage backend
type StorageConfig struct {
	Type      string `validate:"required,oneof=local s3 mock"`
	LocalPath string
	BaseURL   string
	Bucket    string
	Region    string
}

// AuthConfig configures the local server's optional bearer guard.
// The guard stays off while JWTSecret is empty.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

var validate = validator.New()

// Load loads configuration from environment variables and an optional
// .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("REPOSITORY_TYPE", "memory")
	viper.SetDefault("DATABASE_PATH", "./data/invoices.db")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 1)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 1)
	viper.SetDefault("TABLE_NAME", "invoices")
	viper.SetDefault("STORAGE_TYPE", "local")
	viper.SetDefault("STORAGE_LOCAL_PATH", "./data/attachments")
	viper.SetDefault("AUTH_TOKEN_TTL", "24h")

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Repository: RepositoryConfig{
			Type:         viper.GetString("REPOSITORY_TYPE"),
			DatabasePath: viper.GetString("DATABASE_PATH"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			TableName:    viper.GetString("TABLE_NAME"),
			Region:       viper.GetString("AWS_REGION"),
		},
		Storage: StorageConfig{
			Type:      viper.GetString("STORAGE_TYPE"),
			LocalPath: viper.GetString("STORAGE_LOCAL_PATH"),
			BaseURL:   viper.GetString("STORAGE_BASE_URL"),
			Bucket:    viper.GetString("S3_BUCKET"),
			Region:    viper.GetString("AWS_REGION"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("AUTH_JWT_SECRET"),
			TokenTTL:  viper.GetDuration("AUTH_TOKEN_TTL"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks the configuration for inconsistent settings
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Repository.Type == "sqlite" && c.Repository.DatabasePath == "" {
		return fmt.Errorf("sqlite repository requires DATABASE_PATH")
	}
	if c.Repository.Type == "dynamodb" && c.Repository.TableName == "" {
		return fmt.Errorf("dynamodb repository requires TABLE_NAME")
	}
	if c.Storage.Type == "s3" && c.Storage.Bucket == "" {
		return fmt.Errorf("s3 storage requires S3_BUCKET")
	}

	return nil
}

// AuthEnabled reports whether the bearer guard should be mounted
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
