package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/command"
	"github.com/garyjia/sip-workflow/internal/application/decision"
	"github.com/garyjia/sip-workflow/internal/application/dispatcher"
	"github.com/garyjia/sip-workflow/internal/application/orchestrator"
	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/garyjia/sip-workflow/internal/interfaces/http"
	"github.com/garyjia/sip-workflow/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	db           *database.DB
	txManager    *sqlite.DB
	repositories *RepositoryBundle

	// Infrastructure - External
	external *ExternalBundle

	// Application
	registry     *command.Registry
	dispatcher   dispatcher.Dispatcher
	engine       *decision.Engine
	orchestrator orchestrator.Orchestrator

	// Interfaces
	server *httpserver.Server

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Applications  *sqlite.ApplicationRepository
	History       port.StatusHistoryRepository
	Notifications port.NotificationRepository
	Audit         port.AuditLogRepository
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Database and repositories
// 2. External clients (Lark, OpenAI, webhook, Redis)
// 3. Command registry
// 4. Event dispatcher, decision engine and orchestrator
// 5. HTTP server
// A failed step closes whatever was already opened.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container")

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"database", c.initDatabase},
		{"external clients", c.initExternalClients},
		{"commands", c.initCommands},
		{"orchestrator", c.initOrchestrator},
		{"http server", c.initServer},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			c.logger.Error("Container start failed", zap.String("step", step.name), zap.Error(err))
			c.teardown()
			return fmt.Errorf("init %s: %w", step.name, err)
		}
		c.logger.Info("Component initialized", zap.String("step", step.name))
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")
	errs := c.teardown()
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// teardown releases components in reverse initialization order
func (c *Container) teardown() []error {
	var errs []error

	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop http server: %w", err))
		}
	}

	// the dispatcher waits for async handlers, which may still publish to Redis
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		} else {
			c.logger.Info("Dispatcher closed")
		}
		c.dispatcher = nil
	}

	if c.external != nil && c.external.Redis != nil {
		if err := c.external.Redis.Close(); err != nil {
			c.logger.Error("Failed to close redis client", zap.Error(err))
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		c.external.Redis = nil
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
		c.db = nil
	}

	return errs
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}
	set := func(name string, err error) {
		if err != nil {
			status.Components[name] = ComponentHealth{Healthy: false, Message: err.Error()}
			status.Overall = false
			return
		}
		status.Components[name] = ComponentHealth{Healthy: true}
	}

	if c.db != nil {
		set("database", c.db.Health(ctx))
	} else {
		set("database", errNotInitialized)
	}

	if c.config.Redis.Enabled {
		if c.external != nil && c.external.Redis != nil {
			set("redis", c.external.Redis.Ping(ctx).Err())
		} else {
			set("redis", errNotInitialized)
		}
	}

	if c.dispatcher != nil {
		set("dispatcher", nil)
	} else {
		set("dispatcher", errNotInitialized)
	}

	if c.orchestrator != nil && c.registry != nil {
		status.Components["orchestrator"] = ComponentHealth{
			Healthy: true,
			Message: fmt.Sprintf("commands: %d", len(c.registry.Descriptors())),
		}
	} else {
		set("orchestrator", errNotInitialized)
	}

	return status
}

// CheckHealth adapts Health to the HTTP health endpoint
func (c *Container) CheckHealth(ctx context.Context) (bool, interface{}) {
	status := c.Health(ctx)
	return status.Overall, status.Components
}

var errNotInitialized = fmt.Errorf("not initialized")

func (c *Container) initDatabase(context.Context) error {
	bundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.db = bundle.DB
	c.txManager = bundle.TransactionMgr
	c.repositories = ProvideRepositories(bundle.DB, c.logger)
	return nil
}

func (c *Container) initExternalClients(ctx context.Context) error {
	external, err := ProvideExternal(ctx, c.config, c.logger)
	if err != nil {
		return err
	}
	c.external = external
	return nil
}

func (c *Container) initCommands(context.Context) error {
	registry, err := ProvideRegistry(
		&DatabaseBundle{DB: c.db, TransactionMgr: c.txManager},
		c.repositories,
		c.external,
		&zapLoggerAdapter{logger: c.logger},
	)
	if err != nil {
		return err
	}
	c.registry = registry
	return nil
}

func (c *Container) initOrchestrator(context.Context) error {
	c.dispatcher = ProvideDispatcher(&c.config.Redis, c.external.Redis, c.logger)

	engine, err := ProvideEngine(&c.config.Workflow)
	if err != nil {
		return err
	}
	c.engine = engine
	c.orchestrator = ProvideOrchestrator(&c.config.Workflow, engine, c.registry, c.dispatcher, &zapLoggerAdapter{logger: c.logger})
	return nil
}

func (c *Container) initServer(context.Context) error {
	c.server = httpserver.NewServer(httpserver.ServerConfig{
		Host:         c.config.Server.Host,
		Port:         c.config.Server.Port,
		ReadTimeout:  c.config.Server.ReadTimeout,
		WriteTimeout: c.config.Server.WriteTimeout,
	}, httpserver.Deps{
		Evaluator:     c.engine,
		Orchestrator:  c.orchestrator,
		Audit:         c.repositories.Audit,
		Applications:  c.repositories.Applications,
		Scorer:        c.external.Scorer,
		Resumes:       c.external.Resumes,
		Documents:     c.external.Documents,
		Health:        c,
		MaxRetries:    c.config.Workflow.RetryMax,
		DefaultLocale: c.config.Locale,
	}, &zapLoggerAdapter{logger: c.logger})
	return nil
}

// Server returns the HTTP server
func (c *Container) Server() *httpserver.Server {
	return c.server
}

// Orchestrator returns the workflow orchestrator
func (c *Container) Orchestrator() orchestrator.Orchestrator {
	return c.orchestrator
}

// Engine returns the decision engine
func (c *Container) Engine() *decision.Engine {
	return c.engine
}

// Registry returns the command registry
func (c *Container) Registry() *command.Registry {
	return c.registry
}

// Dispatcher returns the event dispatcher
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Repositories returns the repository bundle
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// RedisClient returns the Redis client, nil when fan-out is disabled
func (c *Container) RedisClient() *goredis.Client {
	if c.external == nil {
		return nil
	}
	return c.external.Redis
}

// Logger returns the container logger
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container configuration
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the port.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
