package http

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mrlokans/readtrack/internal/auth"
)

// RouterConfig contains all dependencies needed to build the HTTP router.
// Optional dependencies left nil disable their routes.
type RouterConfig struct {
	Logger  zerolog.Logger
	Version string

	// Core dependencies
	Database      Pinger
	ImportService ImportService
	ImportJobs    ImportJobStore
	Shelves       ShelfReader
	Catalog       CatalogSearcher

	MaxUploadBytes int64

	// Cover image cache (optional); Books serves the book lookups for it
	Covers CoverCache
	Books  BookGetter

	// Background tasks (optional)
	Enqueuer   ImportEnqueuer
	TaskStatus TaskStatusReader

	// Authentication
	AuthMiddleware    *auth.Middleware
	SessionManager    *auth.SessionManager
	SessionController *auth.SessionController
	CSRFSecret        []byte
	SecureCookies     bool

	// Prometheus exposition handler (optional)
	MetricsHandler http.Handler
}
