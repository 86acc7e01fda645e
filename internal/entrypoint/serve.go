package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mrlokans/readtrack/internal/auth"
	"github.com/mrlokans/readtrack/internal/config"
	"github.com/mrlokans/readtrack/internal/covers"
	http_controllers "github.com/mrlokans/readtrack/internal/http"
	"github.com/mrlokans/readtrack/internal/logger"
	"github.com/mrlokans/readtrack/internal/metrics"
	"github.com/mrlokans/readtrack/internal/scheduler"
	"github.com/mrlokans/readtrack/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs srv until ctx is cancelled, then shuts it down within timeout.
func Serve(ctx context.Context, srv *http.Server, timeout time.Duration, log zerolog.Logger, onShutdown ShutdownFunc) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", timeout).Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info().Msg("Server exiting")
	return nil
}

// Run starts the HTTP server with background tasks and the cleanup
// scheduler, and blocks until SIGINT or SIGTERM.
func Run(cfg *config.Config, version string) error {
	log := logger.Setup(cfg.Log)
	log.Info().Str("version", version).Msg("Starting readtrack")

	if cfg.Import.CleanupSchedule != "" {
		if err := scheduler.ValidateSchedule(cfg.Import.CleanupSchedule); err != nil {
			return fmt.Errorf("invalid IMPORT_CLEANUP_SCHEDULE: %w", err)
		}
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := Build(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	routerCfg := http_controllers.RouterConfig{
		Logger:         logger.Component(log, "http"),
		Version:        version,
		Database:       app.Database,
		ImportService:  app.Importer,
		ImportJobs:     app.Imports,
		Shelves:        app.Shelves,
		Catalog:        app.Catalog,
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
	}
	coverDir := cfg.Covers.Dir
	if coverDir == "" {
		coverDir = filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
	}
	if coverCache, err := covers.NewCache(coverDir, cfg.Covers.Timeout); err != nil {
		log.Warn().Err(err).Msg("Cover cache disabled")
	} else {
		routerCfg.Covers = coverCache
		routerCfg.Books = app.Catalog
	}

	if app.Registry != nil {
		routerCfg.MetricsHandler = metrics.Handler(app.Registry)
	}

	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks), logger.Component(log, "tasks"))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing task client")
			}
		}()

		taskClient.Register(
			tasks.NewImportGoodreadsQueue(app.Importer, logger.Component(log, "import_task")),
			tasks.NewCleanupImportHistoryQueue(app.Imports, logger.Component(log, "cleanup_task")),
		)
		go taskClient.Start(ctx)

		routerCfg.Enqueuer = taskClient
		routerCfg.TaskStatus = taskClient
	} else {
		log.Info().Msg("Background tasks disabled; async imports unavailable")
	}

	cleanup := scheduler.NewCleanupScheduler(cfg.Import.CleanupSchedule, cleanupJob(app, taskClient), log)
	if err := cleanup.Start(ctx); err != nil {
		return fmt.Errorf("failed to start cleanup scheduler: %w", err)
	}

	if err := configureAuth(cfg, app, &routerCfg); err != nil {
		return err
	}

	router := http_controllers.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	onShutdown := func(ctx context.Context) {
		cleanup.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	return Serve(ctx, srv, timeout, log, onShutdown)
}

// cleanupJob enqueues history cleanup on the task queue, or runs it inline
// when tasks are disabled.
func cleanupJob(app *App, taskClient *tasks.Client) scheduler.Job {
	days := app.Config.Import.HistoryRetentionDays
	return func(ctx context.Context) error {
		if taskClient != nil {
			return taskClient.EnqueueImportHistoryCleanup(days)
		}
		if days <= 0 {
			days = tasks.DefaultImportHistoryRetentionDays
		}
		deleted, err := app.Imports.DeleteOlderThan(time.Now().AddDate(0, 0, -days))
		if err != nil {
			return err
		}
		app.Log.Info().Int64("deleted", deleted).Msg("Cleaned up import history")
		return nil
	}
}

func configureAuth(cfg *config.Config, app *App, routerCfg *http_controllers.RouterConfig) error {
	log := logger.Component(app.Log, "auth")

	if cfg.Auth.Mode != config.AuthModeToken {
		mw, err := auth.NewMiddleware(app.Users, nil, cfg.Auth)
		if err != nil {
			return err
		}
		routerCfg.AuthMiddleware = mw
		log.Info().Msg("Authentication mode: none (single local user)")
		return nil
	}

	log.Info().Msg("Authentication mode: token")

	var sessions *auth.SessionManager
	if app.Database.Driver == config.DriverSQLite {
		sqlDB, err := app.Database.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
		}
		sessions, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			return fmt.Errorf("failed to initialize session manager: %w", err)
		}
	} else {
		log.Warn().Msg("Cookie sessions need the SQLite store; only bearer tokens are accepted")
	}

	mw, err := auth.NewMiddleware(app.Users, sessions, cfg.Auth)
	if err != nil {
		return err
	}
	routerCfg.AuthMiddleware = mw

	if sessions == nil {
		return nil
	}

	key, generated, err := csrfKey(cfg.Auth.SessionSecret)
	if err != nil {
		return err
	}
	if generated {
		log.Warn().Msg("Generated CSRF key; set AUTH_SESSION_SECRET to keep it across restarts")
	}

	routerCfg.SessionManager = sessions
	routerCfg.SessionController = auth.NewSessionController(app.Users, sessions, auth.NewLoginLimiter(10*time.Second, 5), log)
	routerCfg.CSRFSecret = key
	routerCfg.SecureCookies = cfg.Auth.SecureCookies
	return nil
}
