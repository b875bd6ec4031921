package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the streaming service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"streaming-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"STREAMING_API_PORT" envDefault:"8290"`
	LogLevel        string        `env:"STREAMING_LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database
	DBPostgresqlWriteDSN string `env:"DB_POSTGRESQL_WRITE_DSN,notEmpty"`
	DBPostgresqlRead1DSN string `env:"DB_POSTGRESQL_READ1_DSN"` // Optional read replica

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Storage Backend Selection
	StorageBackend string `env:"VIDEO_STORAGE_BACKEND" envDefault:"local"` // Options: "local", "s3" or "azblob"

	// Local Storage Configuration
	LocalStoragePath    string `env:"VIDEO_LOCAL_STORAGE_PATH" envDefault:"uploads/videos"`
	LocalStorageBaseURL string `env:"VIDEO_LOCAL_STORAGE_BASE_URL" envDefault:"/v1/files"`

	// S3 Storage Configuration
	S3Endpoint     string        `env:"VIDEO_S3_ENDPOINT"`
	S3Region       string        `env:"VIDEO_S3_REGION" envDefault:"us-west-2"`
	S3Bucket       string        `env:"VIDEO_S3_BUCKET"`
	S3AccessKeyID  string        `env:"VIDEO_S3_ACCESS_KEY_ID"`
	S3SecretKey    string        `env:"VIDEO_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool          `env:"VIDEO_S3_USE_PATH_STYLE" envDefault:"true"`
	S3PresignTTL   time.Duration `env:"VIDEO_S3_PRESIGN_TTL" envDefault:"15m"`

	// Azure Blob Storage Configuration
	AzureAccountName string        `env:"VIDEO_AZURE_ACCOUNT_NAME"`
	AzureAccountKey  string        `env:"VIDEO_AZURE_ACCOUNT_KEY"`
	AzureContainer   string        `env:"VIDEO_AZURE_CONTAINER"`
	AzureSASTTL      time.Duration `env:"VIDEO_AZURE_SAS_TTL" envDefault:"1h"`

	// Upload Configuration
	MaxVideoBytes int64 `env:"VIDEO_MAX_BYTES" envDefault:"2147483648"` // 2 GiB

	// Authentication
	AuthEnabled bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer  string `env:"AUTH_ISSUER"`
	AuthJWKSURL string `env:"AUTH_JWKS_URL"`
	Audience    string `env:"AUTH_AUDIENCE"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.AzureAccountName = strings.TrimSpace(cfg.AzureAccountName)
	cfg.AzureAccountKey = strings.TrimSpace(cfg.AzureAccountKey)
	cfg.AzureContainer = strings.TrimSpace(cfg.AzureContainer)

	if cfg.MaxVideoBytes <= 0 {
		cfg.MaxVideoBytes = 2 * 1024 * 1024 * 1024
	}

	switch backend := strings.ToLower(strings.TrimSpace(cfg.StorageBackend)); backend {
	case "", "local", "s3", "azblob":
	default:
		return nil, fmt.Errorf("unknown VIDEO_STORAGE_BACKEND %q (expected local, s3 or azblob)", backend)
	}

	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}
	return cfg, nil
}

// GetDatabaseWriteDSN returns the write database connection string.
func (c *Config) GetDatabaseWriteDSN() string {
	return c.DBPostgresqlWriteDSN
}

// GetDatabaseReadDSN returns the read database connection string, falling
// back to the write DSN when no replica is configured.
func (c *Config) GetDatabaseReadDSN() string {
	if c.DBPostgresqlRead1DSN != "" {
		return c.DBPostgresqlRead1DSN
	}
	return c.GetDatabaseWriteDSN()
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if the local filesystem backend is configured.
func (c *Config) IsLocalStorage() bool {
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	return backend == "" || backend == "local"
}

// IsS3Storage returns true if the S3 backend is configured.
func (c *Config) IsS3Storage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "s3"
}

// IsAzureStorage returns true if the Azure Blob backend is configured.
func (c *Config) IsAzureStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "azblob"
}
