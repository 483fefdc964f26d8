package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	httpapi "github.com/aussiebroadwan/tally/internal/tally/http"
	"github.com/aussiebroadwan/tally/internal/tally/metrics"
	"github.com/aussiebroadwan/tally/internal/tally/service"
	"github.com/aussiebroadwan/tally/internal/tally/store"
	"github.com/aussiebroadwan/tally/internal/tally/store/drivers/postgres"
	"github.com/aussiebroadwan/tally/internal/tally/store/drivers/sqlite"
	"github.com/aussiebroadwan/tally/pkg/cryptox"
	"github.com/aussiebroadwan/tally/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// Startup ping budget. Request-path store calls are never retried.
const (
	pingAttempts = 6
	pingBase     = 250 * time.Millisecond
	pingTimeout  = 5 * time.Second
)

// Application encapsulates the tally service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	metrics *metrics.Metrics

	tokenService *service.TokenService
	authService  *service.AuthService
	todoService  *service.TodoService

	server *http.Server
	router *httpapi.Router
}

// New validates cfg and wires the application. The store is reachable and
// migrated when New returns.
func New(ctx context.Context, cfg Config) (*Application, error) {
	logger := slogx.New(slogx.Config{
		Service: "tally",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	return NewWithLogger(ctx, cfg, logger)
}

// NewWithLogger is New with a caller supplied logger.
func NewWithLogger(ctx context.Context, cfg Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler is the fully wired HTTP handler, middleware included.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the HTTP server and blocks until ctx is done, a shutdown signal
// arrives or the server fails.
func (app *Application) Run(ctx context.Context) error {
	app.logger.Info("tally starting",
		"port", app.cfg.Port,
		"driver", app.cfg.Driver(),
		"version", BuildVersion,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
	case <-ctx.Done():
		app.logger.Info("context cancelled", "reason", context.Cause(ctx))
	}

	if err := app.Shutdown(); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests for up to the configured grace period
// and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tally...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("tally stopped")
	return nil
}

// Migrate applies the schema for cfg's database and exits without serving.
func Migrate(ctx context.Context, cfg Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	logger.Info("database migrations applied successfully", "driver", cfg.Driver())
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := openStore(ctx, app.cfg, app.logger)
	if err != nil {
		return err
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// openStore picks the driver from the URL and waits for the database to
// answer a ping.
func openStore(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.Driver() {
	case store.DriverPostgres:
		db, err = postgres.NewStore(ctx, cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(store.SQLiteDSN(cfg.DatabaseURL))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := pingStore(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func pingStore(ctx context.Context, db store.Store, logger *slog.Logger) error {
	backoff := retry.WithMaxRetries(pingAttempts-1, retry.NewExponential(pingBase))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		if err := db.Ping(pctx); err != nil {
			logger.Warn("database not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_UNREACHABLE").With("attempts", attempt).Wrap(err)
	}
	return nil
}

// initServices builds the business services around the store
func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrGeneratePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	hasher, err := cryptox.NewHasher(app.cfg.PasswordHasher, pepper)
	if err != nil {
		return err
	}

	tokens, err := service.NewTokenService(app.cfg.TokenConfig())
	if err != nil {
		return err
	}
	tokens.OnReject = app.metrics.RecordTokenRejection
	app.tokenService = tokens

	app.authService = &service.AuthService{
		Store:   app.db,
		Hasher:  hasher,
		Tokens:  tokens,
		OnEvent: app.metrics.RecordAuthEvent,
	}
	app.todoService = &service.TodoService{Store: app.db}

	app.logger.Info("services initialised",
		"hasher", app.cfg.PasswordHasher,
		"token_lifetime", app.cfg.TokenLifetime,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.metrics, app.logger)

	router.Tokens = app.tokenService
	router.AuthService = app.authService
	router.TodoService = app.todoService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
