// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Upload    UploadConfig
	Mail      MailConfig
	Auth      AuthConfig
	Artifacts ArtifactConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// Connection timeouts. WriteTimeout is raised to cover UPLOAD_TIMEOUT on bulk routes.
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a single non-bulk request (default: 5m). Imports, exports,
	// notifications and documents run under UPLOAD_TIMEOUT instead.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Driver selects the store implementation: postgres or sqlite (default: postgres)
	Driver string `env:"DB_DRIVER" default:"postgres"`

	// URL is the PostgreSQL connection string or the SQLite file path (required).
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig holds spreadsheet upload and bulk operation settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed spreadsheet size in bytes (default: 20MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent is the maximum number of bulk operations running at once (default: 3)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"3"`

	// MaxWaitTime is how long to wait for a free slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for a single bulk operation (default: 10m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"10m"`
}

// MailConfig holds outbound mail settings.
type MailConfig struct {
	// Driver is sendgrid or console (default: console)
	Driver string `env:"MAIL_DRIVER" default:"console"`

	SendGridAPIKey string `env:"SENDGRID_API_KEY"`

	// DefaultFrom is used when a request does not name a sender
	DefaultFrom string `env:"MAIL_DEFAULT_FROM" default:"no-reply@localhost"`

	// SubjectPrefix is prepended to every subject, e.g. "[Doctorat] "
	SubjectPrefix string `env:"MAIL_SUBJECT_PREFIX"`
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	// JWTSecret is the HMAC key shared with the token issuer (required)
	JWTSecret string `env:"AUTH_JWT_SECRET" envAlt:"JWT_SECRET" required:"true"`

	Issuer string `env:"AUTH_ISSUER" default:"scidesk"`

	// TokenTTL is used by the admin CLI when issuing tokens (default: 24h)
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL" default:"24h"`
}

// ArtifactConfig controls where generated workbooks and archives are kept.
type ArtifactConfig struct {
	// Driver is none, fs or s3 (default: none)
	Driver string `env:"ARTIFACT_DRIVER" default:"none"`

	Dir         string `env:"ARTIFACT_DIR" default:"./artifacts"`
	S3Bucket    string `env:"ARTIFACT_S3_BUCKET"`
	S3Region    string `env:"ARTIFACT_S3_REGION" default:"us-east-1"`
	S3Endpoint  string `env:"ARTIFACT_S3_ENDPOINT"`
	S3PathStyle bool   `env:"ARTIFACT_S3_PATH_STYLE" default:"false"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
