package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"golang.org/x/text/language"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Lark     LarkConfig     `mapstructure:"lark"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Resume   ResumeConfig   `mapstructure:"resume"`
	// Locale is the language of denial reasons for callers that send no
	// Accept-Language header
	Locale string `mapstructure:"locale"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"`
	// MigrationsDir overrides the migrations embedded in the binary
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// WorkflowConfig tunes the decision engine and orchestrator
type WorkflowConfig struct {
	RetryMax          int           `mapstructure:"retry_max"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
	Timezone          string        `mapstructure:"timezone"`
	WeekendRestricted bool          `mapstructure:"weekend_restricted"`
	HighRiskThreshold float64       `mapstructure:"high_risk_threshold"`
}

// LarkConfig holds Lark API configuration
type LarkConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	BaseURL   string `mapstructure:"base_url"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	BaseURL     string        `mapstructure:"base_url"`
}

// RedisConfig holds event fan-out configuration
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Channel string `mapstructure:"channel"`
}

// WebhookConfig holds outbound webhook configuration
type WebhookConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ResumeConfig holds resume upload configuration
type ResumeConfig struct {
	UploadsEnabled bool `mapstructure:"uploads_enabled"`
	MaxPages       int  `mapstructure:"max_pages"`
}

// Load loads configuration from file, an optional .env file next to the
// working directory and environment variables
func Load(configPath string) (*Config, error) {
	return LoadWithEnvFile(configPath, ".env")
}

// LoadWithEnvFile is Load with an explicit .env path. A missing env file is
// not an error.
func LoadWithEnvFile(configPath, envPath string) (*Config, error) {
	if envPath != "" {
		if err := gotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.path", "data/sip.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.busy_timeout", 5*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	v.SetDefault("workflow.retry_max", 3)
	v.SetDefault("workflow.retry_backoff", 500*time.Millisecond)
	v.SetDefault("workflow.timezone", "UTC")
	v.SetDefault("workflow.weekend_restricted", false)
	v.SetDefault("workflow.high_risk_threshold", 60.0)

	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.temperature", 0.2)
	v.SetDefault("openai.timeout", 30*time.Second)

	v.SetDefault("redis.channel", "EVENT_APPLICATION_STATUS")

	v.SetDefault("webhook.timeout", 10*time.Second)

	v.SetDefault("resume.uploads_enabled", true)
	v.SetDefault("resume.max_pages", 5)

	v.SetDefault("locale", "en-US")
}

// bindEnvVars binds the conventional names of credentials
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"lark.app_id":     "LARK_APP_ID",
		"lark.app_secret": "LARK_APP_SECRET",
		"openai.api_key":  "OPENAI_API_KEY",
		"redis.url":       "REDIS_URL",
		"webhook.secret":  "WEBHOOK_SECRET",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "SIP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Workflow.RetryMax < 0 {
		return fmt.Errorf("workflow.retry_max must not be negative")
	}
	if _, err := time.LoadLocation(c.Workflow.Timezone); err != nil {
		return fmt.Errorf("workflow.timezone: %w", err)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("locale: %w", err)
	}

	if c.Resume.MaxPages < 0 {
		return fmt.Errorf("resume.max_pages must not be negative")
	}

	if c.Lark.Enabled && (c.Lark.AppID == "" || c.Lark.AppSecret == "") {
		return fmt.Errorf("lark.app_id and lark.app_secret are required when lark is enabled")
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
