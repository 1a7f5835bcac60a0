// Package config provides environment-based configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"chat-relay/internal/types"
	"chat-relay/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration settings
type Config struct {
	Server    types.ServerConfig
	Upstream  types.UpstreamConfig
	Log       types.LogConfig
	CORS      types.CORSConfig
	Database  types.DatabaseConfig
	Retention types.RetentionConfig
}

// Manager implements the ConfigManager interface
type Manager struct {
	config *Config
}

// NewManager creates a new configuration manager from the environment.
// A .env file is honored when present.
func NewManager() (types.ConfigManager, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using system environment variables")
	}

	config := &Config{
		Server: types.ServerConfig{
			Host:                    utils.GetEnvOrDefault("HOST", "0.0.0.0"),
			Port:                    utils.ParseInteger(utils.GetEnvOrDefault("PORT", ""), 3000),
			ReadTimeout:             utils.ParseInteger(utils.GetEnvOrDefault("SERVER_READ_TIMEOUT", ""), 60),
			WriteTimeout:            utils.ParseInteger(utils.GetEnvOrDefault("SERVER_WRITE_TIMEOUT", ""), 600),
			IdleTimeout:             utils.ParseInteger(utils.GetEnvOrDefault("SERVER_IDLE_TIMEOUT", ""), 120),
			GracefulShutdownTimeout: utils.ParseInteger(utils.GetEnvOrDefault("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", ""), 30),
		},
		Upstream: types.UpstreamConfig{
			URL:              utils.GetEnvOrDefault("UPSTREAM_URL", "https://api.deepseek.com/v1/chat/completions"),
			APIKey:           utils.GetEnvOrDefault("UPSTREAM_API_KEY", ""),
			RequestTimeout:   time.Duration(utils.ParseInteger(utils.GetEnvOrDefault("UPSTREAM_TIMEOUT", ""), 120)) * time.Second,
			ConnectTimeout:   time.Duration(utils.ParseInteger(utils.GetEnvOrDefault("UPSTREAM_CONNECT_TIMEOUT", ""), 15)) * time.Second,
			StreamErrorFrame: utils.ParseBoolean(utils.GetEnvOrDefault("STREAM_ERROR_FRAME", ""), false),
		},
		Log: types.LogConfig{
			Level:      utils.GetEnvOrDefault("LOG_LEVEL", "info"),
			Format:     utils.GetEnvOrDefault("LOG_FORMAT", "text"),
			EnableFile: utils.ParseBoolean(utils.GetEnvOrDefault("LOG_ENABLE_FILE", ""), false),
			FilePath:   utils.GetEnvOrDefault("LOG_FILE_PATH", "./logs/app.log"),
		},
		CORS: types.CORSConfig{
			Enabled:        utils.ParseBoolean(utils.GetEnvOrDefault("ENABLE_CORS", ""), true),
			AllowedOrigins: utils.ParseArray(utils.GetEnvOrDefault("ALLOWED_ORIGINS", "*")),
			AllowedMethods: utils.ParseArray(utils.GetEnvOrDefault("ALLOWED_METHODS", "GET,POST,OPTIONS")),
			AllowedHeaders: utils.ParseArray(utils.GetEnvOrDefault("ALLOWED_HEADERS", "*")),
		},
		Database: types.DatabaseConfig{
			DSN: utils.GetEnvOrDefault("DATABASE_DSN", "./data/chat-relay.db"),
		},
		Retention: types.RetentionConfig{
			FlushInterval:     time.Duration(utils.ParseInteger(utils.GetEnvOrDefault("LOG_FLUSH_INTERVAL", ""), 60)) * time.Second,
			MaxPendingEntries: utils.ParseInteger(utils.GetEnvOrDefault("LOG_MAX_PENDING", ""), 1000),
		},
	}

	manager := &Manager{config: config}
	if err := manager.Validate(); err != nil {
		return nil, err
	}

	return manager, nil
}

// Validate checks the configuration for invalid values. A missing upstream
// API key is not fatal: the chat endpoint reports it per request instead.
func (m *Manager) Validate() error {
	var errs []string

	if m.config.Server.Port < 1 || m.config.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port: %d", m.config.Server.Port))
	}
	if !strings.HasPrefix(m.config.Upstream.URL, "http://") && !strings.HasPrefix(m.config.Upstream.URL, "https://") {
		errs = append(errs, fmt.Sprintf("invalid upstream URL: %s", m.config.Upstream.URL))
	}
	if m.config.Upstream.RequestTimeout <= 0 {
		errs = append(errs, "upstream timeout must be positive")
	}
	if m.config.Upstream.APIKey == "" {
		logrus.Warn("UPSTREAM_API_KEY is not set; chat completion requests will fail until it is configured")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsAPIKeyConfigured reports whether the upstream bearer credential is set.
func (m *Manager) IsAPIKeyConfigured() bool {
	return m.config.Upstream.APIKey != ""
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() types.ServerConfig {
	return m.config.Server
}

// GetUpstreamConfig returns the upstream endpoint configuration
func (m *Manager) GetUpstreamConfig() types.UpstreamConfig {
	return m.config.Upstream
}

// GetLogConfig returns logging configuration
func (m *Manager) GetLogConfig() types.LogConfig {
	return m.config.Log
}

// GetCORSConfig returns CORS configuration
func (m *Manager) GetCORSConfig() types.CORSConfig {
	return m.config.CORS
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() types.DatabaseConfig {
	return m.config.Database
}

// GetRetentionConfig returns request log persistence configuration
func (m *Manager) GetRetentionConfig() types.RetentionConfig {
	return m.config.Retention
}

// DisplayServerConfig logs the effective configuration at startup.
func (m *Manager) DisplayServerConfig() {
	maskedKey := "not configured"
	if m.config.Upstream.APIKey != "" {
		maskedKey = "configured"
	}

	logrus.Info("")
	logrus.Info("======= Configuration =======")
	logrus.Infof("  Listen:          %s:%d", m.config.Server.Host, m.config.Server.Port)
	logrus.Infof("  Upstream:        %s", m.config.Upstream.URL)
	logrus.Infof("  API key:         %s", maskedKey)
	logrus.Infof("  Timeout:         %v", m.config.Upstream.RequestTimeout)
	logrus.Infof("  Log level:       %s", m.config.Log.Level)
	logrus.Infof("  Database:        %s", m.config.Database.DSN)
	logrus.Infof("  CORS enabled:    %t", m.config.CORS.Enabled)
	logrus.Info("=============================")
	logrus.Info("")
}
