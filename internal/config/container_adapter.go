package config

import (
	"github.com/garyjia/sip-workflow/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			BusyTimeout:     c.Database.BusyTimeout,
			MigrationsDir:   c.Database.MigrationsDir,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
		Workflow: container.WorkflowConfig{
			RetryMax:          c.Workflow.RetryMax,
			RetryBackoff:      c.Workflow.RetryBackoff,
			Timezone:          c.Workflow.Timezone,
			WeekendRestricted: c.Workflow.WeekendRestricted,
			HighRiskThreshold: c.Workflow.HighRiskThreshold,
		},
		Lark: container.LarkConfig{
			Enabled:   c.Lark.Enabled,
			AppID:     c.Lark.AppID,
			AppSecret: c.Lark.AppSecret,
			BaseURL:   c.Lark.BaseURL,
		},
		OpenAI: container.OpenAIConfig{
			Enabled:     c.OpenAI.Enabled,
			APIKey:      c.OpenAI.APIKey,
			Model:       c.OpenAI.Model,
			Temperature: c.OpenAI.Temperature,
			Timeout:     c.OpenAI.Timeout,
			BaseURL:     c.OpenAI.BaseURL,
		},
		Redis: container.RedisConfig{
			Enabled: c.Redis.Enabled,
			URL:     c.Redis.URL,
			Channel: c.Redis.Channel,
		},
		Webhook: container.WebhookConfig{
			Enabled: c.Webhook.Enabled,
			URL:     c.Webhook.URL,
			Secret:  c.Webhook.Secret,
			Timeout: c.Webhook.Timeout,
		},
		Resume: container.ResumeConfig{
			UploadsEnabled: c.Resume.UploadsEnabled,
			MaxPages:       c.Resume.MaxPages,
		},
		Locale: c.Locale,
	}
}
