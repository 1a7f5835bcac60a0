// Package types defines shared configuration interfaces and structures
package types

import "time"

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetServerConfig() ServerConfig
	GetUpstreamConfig() UpstreamConfig
	GetLogConfig() LogConfig
	GetCORSConfig() CORSConfig
	GetDatabaseConfig() DatabaseConfig
	GetRetentionConfig() RetentionConfig
	IsAPIKeyConfigured() bool
	Validate() error
	DisplayServerConfig()
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             int
	WriteTimeout            int
	IdleTimeout             int
	GracefulShutdownTimeout int
}

// UpstreamConfig represents the single upstream endpoint configuration
type UpstreamConfig struct {
	URL            string
	APIKey         string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	// StreamErrorFrame controls whether a terminal error frame is injected
	// into an already-open event stream when the upstream fails mid-stream.
	StreamErrorFrame bool
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string
	Format     string
	EnableFile bool
	FilePath   string
}

// CORSConfig represents CORS configuration
type CORSConfig struct {
	Enabled        bool
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	DSN string
}

// RetentionConfig represents request log persistence configuration
type RetentionConfig struct {
	FlushInterval     time.Duration
	MaxPendingEntries int
}
