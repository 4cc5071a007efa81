package config

import (
	"os"
)

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	IsLambda     bool
	FunctionName string
	Region       string
	Stage        string
}

// GetServerlessConfig describes the current Lambda environment
func GetServerlessConfig() *ServerlessConfig {
	return &ServerlessConfig{
		IsLambda:     IsServerlessMode(),
		FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		Region:       os.Getenv("AWS_REGION"),
		Stage:        GetEnv("STAGE", "dev"),
	}
}

// IsServerlessMode reports whether the process runs inside AWS Lambda
func IsServerlessMode() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// GetDeploymentMode returns the current deployment mode
func GetDeploymentMode() string {
	if IsServerlessMode() {
		return "serverless"
	}
	return "server"
}

// AdaptConfigForServerless rewrites the configuration for a Lambda
// deployment, where the filesystem is ephemeral and per-request
func AdaptConfigForServerless(config *Config) *Config {
	if !IsServerlessMode() {
		return config
	}
	return adaptForLambda(config)
}

func adaptForLambda(config *Config) *Config {
	// Local disk does not survive between invocations, so both the
	// repository and attachment storage move to managed services
	config.Repository.Type = "dynamodb"
	if config.Repository.TableName == "" {
		config.Repository.TableName = GetEnv("TABLE_NAME", "invoices")
	}
	if config.Repository.Region == "" {
		config.Repository.Region = os.Getenv("AWS_REGION")
	}

	config.Storage.Type = "s3"
	if config.Storage.Bucket == "" {
		config.Storage.Bucket = GetEnv("S3_BUCKET", "invoice-attachments")
	}
	if config.Storage.Region == "" {
		config.Storage.Region = os.Getenv("AWS_REGION")
	}

	return config
}

// GetOptimizedConfig loads configuration adapted to the current
// deployment mode
func GetOptimizedConfig() (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	return AdaptConfigForServerless(config), nil
}
