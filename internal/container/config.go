// Package container provides dependency injection and lifecycle management
// for the internship workflow service.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Workflow WorkflowConfig
	Lark     LarkConfig
	OpenAI   OpenAIConfig
	Redis    RedisConfig
	Webhook  WebhookConfig
	Resume   ResumeConfig

	// Locale is the fallback language of denial reasons
	Locale string
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration

	// MigrationsDir replaces the embedded migrations when set
	MigrationsDir string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// WorkflowConfig holds decision engine and orchestrator settings.
type WorkflowConfig struct {
	// RetryMax caps the retries a caller may request
	RetryMax     int
	RetryBackoff time.Duration

	// Timezone of business hours and weekends (IANA name)
	Timezone          string
	WeekendRestricted bool
	HighRiskThreshold float64
}

// LarkConfig holds Lark API settings. Email falls back to a logging no-op
// when disabled.
type LarkConfig struct {
	Enabled   bool
	AppID     string
	AppSecret string
	BaseURL   string
}

// OpenAIConfig holds match scoring settings.
type OpenAIConfig struct {
	Enabled     bool
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
	BaseURL     string
}

// RedisConfig holds event fan-out settings.
type RedisConfig struct {
	Enabled bool
	URL     string
	Channel string
}

// WebhookConfig holds outbound webhook settings.
type WebhookConfig struct {
	Enabled bool
	URL     string
	Secret  string
	Timeout time.Duration
}

// ResumeConfig holds resume upload settings.
type ResumeConfig struct {
	// UploadsEnabled turns on PDF resume uploads
	UploadsEnabled bool
	MaxPages       int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/sip.db",
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: 5 * time.Minute,
			BusyTimeout:     5 * time.Second,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Workflow: WorkflowConfig{
			RetryMax:          3,
			RetryBackoff:      500 * time.Millisecond,
			Timezone:          "UTC",
			HighRiskThreshold: 60,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			Timeout:     30 * time.Second,
		},
		Webhook: WebhookConfig{
			Timeout: 10 * time.Second,
		},
		Resume: ResumeConfig{
			UploadsEnabled: true,
			MaxPages:       5,
		},
		Locale: "en-US",
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if _, err := time.LoadLocation(c.Workflow.Timezone); err != nil {
		return fmt.Errorf("workflow.timezone: %w", err)
	}
	if c.Resume.MaxPages < 0 {
		return fmt.Errorf("resume.max_pages must not be negative")
	}
	if c.Lark.Enabled && (c.Lark.AppID == "" || c.Lark.AppSecret == "") {
		return fmt.Errorf("lark credentials are required when lark is enabled")
	}
	if c.OpenAI.Enabled && c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required when openai is enabled")
	}
	if c.Redis.Enabled && c.Redis.URL == "" {
		return fmt.Errorf("redis.url is required when redis is enabled")
	}
	if c.Webhook.Enabled && c.Webhook.URL == "" {
		return fmt.Errorf("webhook.url is required when webhook is enabled")
	}
	return nil
}
