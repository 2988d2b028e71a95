// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/runoshun/todo/internal/domain"
	"github.com/runoshun/todo/internal/infra/config"
	"github.com/runoshun/todo/internal/infra/gitstore"
	"github.com/runoshun/todo/internal/infra/jsonstore"
	"github.com/runoshun/todo/internal/infra/logging"
	"github.com/runoshun/todo/internal/infra/sqlstore"
	"github.com/runoshun/todo/internal/tasklist"
	"github.com/runoshun/todo/internal/taskstore"
)

// Config holds the resolved application paths.
type Config struct {
	ConfigPath string // Explicit --config file, empty for the global file
	DataDir    string // Data directory ($XDG_DATA_HOME/todo)
	StorePath  string // Backend file or repository path
	LogPath    string // Log file path
}

// Container provides dependency injection for the application.
// It holds all port implementations and builds the task manager on demand.
type Container struct {
	// Ports (interfaces bound to implementations)
	Store         domain.KeyValueStore
	Tasks         domain.TaskStore
	Clock         domain.Clock
	Logger        domain.Logger
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager

	// Pointer fields
	AppConfig *domain.Config
	Themes    *taskstore.ThemeStore
	manager   *tasklist.Manager
	logFile   *logging.Logger

	// Configuration
	Config Config

	mu sync.Mutex
}

// New creates a new Container from the global config file, or from
// configPath when it is set.
func New(ctx context.Context, configPath string) (*Container, error) {
	configLoader := config.NewLoader(configPath)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg := ResolveConfig(appConfig, configPath, config.DefaultDataDir())

	logger := logging.New(cfg.LogPath, logging.ParseLevel(appConfig.Log.Level))
	for _, w := range appConfig.Warnings {
		logger.Warn(0, "config", w)
	}

	store, err := OpenStore(ctx, appConfig.Store, cfg.StorePath, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	logger.Debug(0, "app", fmt.Sprintf("opened %s store at %s", appConfig.Store.Backend, cfg.StorePath))

	c := NewWithDeps(cfg, appConfig, store, domain.RealClock{}, logger)
	c.ConfigLoader = configLoader
	c.ConfigManager = config.NewManager(configPath)
	c.logFile = logger
	return c, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, store domain.KeyValueStore, clock domain.Clock, logger domain.Logger) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Container{
		Store:     store,
		Tasks:     taskstore.New(store, appConfig.Store.TasksKey, logger),
		Themes:    taskstore.NewThemeStore(store, appConfig.Store.ThemeKey, logger),
		Clock:     clock,
		Logger:    logger,
		AppConfig: appConfig,
		Config:    cfg,
	}
}

// ResolveConfig fills in the data-directory defaults for appConfig.
func ResolveConfig(appConfig *domain.Config, configPath, dataDir string) Config {
	storePath := appConfig.Store.Path
	if storePath == "" {
		storePath = domain.DefaultStorePath(dataDir, appConfig.Store.Backend)
	}
	return Config{
		ConfigPath: configPath,
		DataDir:    dataDir,
		StorePath:  storePath,
		LogPath:    domain.LogPath(dataDir),
	}
}

// OpenStore opens the key-value backend selected by sc.
// logger may be nil.
func OpenStore(ctx context.Context, sc domain.StoreConfig, path string, logger domain.Logger) (domain.KeyValueStore, error) {
	switch sc.Backend {
	case domain.BackendJSON, "":
		return jsonstore.New(path), nil
	case domain.BackendGit:
		store, err := gitstore.Open(path, sc.Namespace, sc.EncryptionKey, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case domain.BackendSQLite:
		store, err := sqlstore.OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case domain.BackendMySQL:
		store, err := sqlstore.OpenMySQL(ctx, sc.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, sc.Backend)
	}
}

// TaskManager returns the task manager, loading the collection on first use.
func (c *Container) TaskManager(ctx context.Context) *tasklist.Manager {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.manager == nil {
		c.manager = tasklist.New(ctx, c.Tasks,
			tasklist.WithClock(c.Clock),
			tasklist.WithLogger(c.Logger),
		)
	}
	return c.manager
}

// Close flushes unsaved changes and releases the store and the log file.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	m := c.manager
	c.mu.Unlock()

	var errs []error
	if m != nil && m.Dirty() {
		errs = append(errs, m.Flush(ctx))
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	if c.logFile != nil {
		errs = append(errs, c.logFile.Close())
	}
	return errors.Join(errs...)
}
