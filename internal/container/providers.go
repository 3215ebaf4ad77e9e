package container

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/command"
	"github.com/garyjia/sip-workflow/internal/application/decision"
	"github.com/garyjia/sip-workflow/internal/application/dispatcher"
	"github.com/garyjia/sip-workflow/internal/application/orchestrator"
	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/infrastructure/document"
	infraLark "github.com/garyjia/sip-workflow/internal/infrastructure/external/lark"
	"github.com/garyjia/sip-workflow/internal/infrastructure/external/openai"
	infraRedis "github.com/garyjia/sip-workflow/internal/infrastructure/external/redis"
	"github.com/garyjia/sip-workflow/internal/infrastructure/external/webhook"
	"github.com/garyjia/sip-workflow/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/sip-workflow/migrations"
	"github.com/garyjia/sip-workflow/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// ExternalBundle holds the adapters of external systems.
type ExternalBundle struct {
	Email   port.EmailSender
	Webhook port.WebhookSender
	// Scorer is nil when AI scoring is disabled
	Scorer port.MatchScorer
	// Resumes is nil when AI scoring is disabled; the HTTP layer then
	// analyzes resumes locally
	Resumes port.ResumeAnalyzer
	// Documents is nil when resume uploads are disabled
	Documents port.DocumentTextExtractor
	// Redis is nil when event fan-out is disabled
	Redis *goredis.Client
}

// ProvideDatabase opens the database and applies pending migrations, from
// MigrationsDir when set and from the embedded set otherwise.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		BusyTimeout:     cfg.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrator := database.NewMigrator(db, logger)
	if cfg.MigrationsDir != "" {
		err = migrator.RunMigrations(cfg.MigrationsDir)
	} else {
		err = migrator.RunMigrationsFS(migrations.FS)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories over the shared connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) *RepositoryBundle {
	return &RepositoryBundle{
		Applications:  sqlite.NewApplicationRepository(db.DB, logger),
		History:       sqlite.NewStatusHistoryRepository(db.DB, logger),
		Notifications: sqlite.NewNotificationRepository(db.DB, logger),
		Audit:         sqlite.NewAuditLogRepository(db.DB, logger),
	}
}

// ProvideExternal creates the Lark, OpenAI, webhook, Redis and document adapters.
// Disabled integrations get no-op stand-ins.
func ProvideExternal(ctx context.Context, cfg *Config, logger *zap.Logger) (*ExternalBundle, error) {
	bundle := &ExternalBundle{}

	if cfg.Lark.Enabled {
		sdk := infraLark.NewSDKClient(infraLark.Config{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
			BaseURL:   cfg.Lark.BaseURL,
		}, logger)
		bundle.Email = infraLark.NewMessenger(sdk, logger)
	} else {
		bundle.Email = infraLark.NewNoopEmailSender(logger)
	}

	if cfg.Webhook.Enabled {
		bundle.Webhook = webhook.NewSender(webhook.Config{
			URL:     cfg.Webhook.URL,
			Secret:  cfg.Webhook.Secret,
			Timeout: cfg.Webhook.Timeout,
		}, logger)
	} else {
		bundle.Webhook = webhook.NewNoopSender(logger)
	}

	if cfg.OpenAI.Enabled {
		aiCfg := openai.Config{
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     cfg.OpenAI.Timeout,
			BaseURL:     cfg.OpenAI.BaseURL,
		}
		bundle.Scorer = openai.NewMatchScorer(aiCfg, logger)
		bundle.Resumes = openai.NewResumeAnalyzer(aiCfg, logger)
	}

	if cfg.Resume.UploadsEnabled {
		bundle.Documents = document.NewPDFTextExtractor(cfg.Resume.MaxPages, logger)
	}

	if cfg.Redis.Enabled {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rdb, err := infraRedis.NewClient(pingCtx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		bundle.Redis = rdb
	}

	return bundle, nil
}

// ProvideRegistry registers the reference commands with their bindings.
func ProvideRegistry(db *DatabaseBundle, repos *RepositoryBundle, ext *ExternalBundle, logger port.Logger) (*command.Registry, error) {
	registry, err := command.NewDefaultRegistry(command.Dependencies{
		Applications:  repos.Applications,
		History:       repos.History,
		Notifications: repos.Notifications,
		Audit:         repos.Audit,
		TxManager:     db.TransactionMgr,
		Email:         ext.Email,
		Webhook:       ext.Webhook,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build command registry: %w", err)
	}
	return registry, nil
}

// ProvideDispatcher creates the event dispatcher and attaches the Redis
// publisher when fan-out is enabled.
func ProvideDispatcher(cfg *RedisConfig, rdb *goredis.Client, logger *zap.Logger) dispatcher.Dispatcher {
	d := dispatcher.NewDispatcher(dispatcher.WithLogger(&zapLoggerAdapter{logger: logger}))
	if rdb != nil {
		infraRedis.NewPublisher(rdb, cfg.Channel, logger).Attach(d)
	}
	return d
}

// ProvideEngine creates the decision engine with the configured policies.
func ProvideEngine(cfg *WorkflowConfig) (*decision.Engine, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}
	policies := decision.NewPolicySet(decision.PolicyConfig{
		Location:          loc,
		WeekendRestricted: cfg.WeekendRestricted,
		HighRiskThreshold: cfg.HighRiskThreshold,
	})
	return decision.NewEngine(decision.WithPolicies(policies)), nil
}

// ProvideOrchestrator wires the engine, registry and dispatcher together.
func ProvideOrchestrator(cfg *WorkflowConfig, engine *decision.Engine, registry *command.Registry, d dispatcher.Dispatcher, logger port.Logger) orchestrator.Orchestrator {
	opts := []orchestrator.Option{
		orchestrator.WithDispatcher(d),
		orchestrator.WithLogger(logger),
	}
	if cfg.RetryBackoff > 0 {
		opts = append(opts, orchestrator.WithRetryBackoff(cfg.RetryBackoff))
	}
	return orchestrator.NewOrchestrator(engine, registry, opts...)
}
