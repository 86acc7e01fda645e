package entrypoint

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/mrlokans/readtrack/internal/config"
	"github.com/mrlokans/readtrack/internal/database"
	"github.com/mrlokans/readtrack/internal/database/catalog"
	"github.com/mrlokans/readtrack/internal/database/imports"
	"github.com/mrlokans/readtrack/internal/database/shelves"
	"github.com/mrlokans/readtrack/internal/database/users"
	"github.com/mrlokans/readtrack/internal/importer"
	"github.com/mrlokans/readtrack/internal/logger"
	"github.com/mrlokans/readtrack/internal/metadata"
	"github.com/mrlokans/readtrack/internal/metrics"
)

// App holds the storage and import pipeline shared by the server and CLI commands.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Database *database.Database

	Users   *users.Repository
	Catalog *catalog.Repository
	Shelves *shelves.Repository
	Imports *imports.Repository

	Provider metadata.Provider
	Registry *prometheus.Registry
	Importer *importer.Service
}

// Build opens the database and assembles the import pipeline.
func Build(cfg *config.Config, log zerolog.Logger) (*App, error) {
	db, err := database.NewDatabase(cfg.Database, logger.Component(log, "database"))
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Log:      log,
		Database: db,
		Users:    users.NewRepository(db.DB),
		Catalog:  catalog.NewRepository(db.DB),
		Shelves:  shelves.NewRepository(db.DB),
		Imports:  imports.NewRepository(db.DB),
		Provider: NewProvider(cfg, log),
	}

	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.Enabled {
		app.Registry = prometheus.NewRegistry()
		app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewCollector(app.Registry)
	}

	resolver := importer.NewResolver(
		app.Catalog,
		importer.NewSubstringTitleMatcher(app.Catalog),
		app.Provider,
		recorder,
		log,
	)
	reconciler := importer.NewReconciler(app.Shelves, log)
	orchestrator := importer.NewOrchestrator(resolver, reconciler, recorder, log)
	app.Importer = importer.NewService(orchestrator, app.Imports, recorder, log)

	return app, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Database.Close()
}

// NewProvider picks Hardcover when a token is configured, OpenLibrary otherwise.
func NewProvider(cfg *config.Config, log zerolog.Logger) metadata.Provider {
	if cfg.Hardcover.Token != "" {
		log.Info().Msg("Using Hardcover as metadata provider")
		return metadata.NewHardcoverClient(cfg.Hardcover)
	}
	log.Info().Str("base_url", cfg.OpenLibrary.BaseURL).Msg("Using OpenLibrary as metadata provider")
	return metadata.NewOpenLibraryClient(cfg.OpenLibrary)
}

// csrfKey turns the configured secret into the 32-byte key gorilla/csrf
// expects: 64 hex characters are used as-is, anything else is hashed.
// An empty secret yields a random per-process key.
func csrfKey(secret string) ([]byte, bool, error) {
	if secret == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, false, fmt.Errorf("failed to generate CSRF key: %w", err)
		}
		return key, true, nil
	}
	if key, err := hex.DecodeString(secret); err == nil && len(key) == 32 {
		return key, false, nil
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:], false, nil
}
