package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readtrack/internal/auth"
	"github.com/mrlokans/readtrack/internal/logger"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(logger.GinMiddleware(cfg.Logger))
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())

	// Session must load before auth reads it; CSRF needs the auth type.
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	if cfg.SessionController != nil {
		cfg.SessionController.RegisterRoutes(router)
	}

	if cfg.ImportService != nil {
		imports := NewImportsController(cfg.ImportService, cfg.ImportJobs, cfg.Enqueuer, cfg.MaxUploadBytes, cfg.Logger)
		router.POST("/api/imports/goodreads/preview", imports.Preview)
		router.POST("/api/imports/goodreads", imports.Import)
		router.POST("/api/imports/goodreads/file", imports.ImportFile)
		router.POST("/api/imports/goodreads/async", imports.ImportAsync)
		router.GET("/api/imports", imports.ListJobs)
		router.GET("/api/imports/:id", imports.GetJob)
	}

	if cfg.Shelves != nil {
		shelf := NewShelfController(cfg.Shelves, cfg.Logger)
		router.GET("/api/shelf", shelf.List)
		router.GET("/api/shelf/stats", shelf.Stats)
	}

	if cfg.Catalog != nil {
		books := NewBooksController(cfg.Catalog, cfg.Logger)
		router.GET("/api/books/search", books.Search)
	}

	if cfg.Covers != nil && cfg.Books != nil {
		coversController := NewCoversController(cfg.Covers, cfg.Books, cfg.Logger)
		router.GET("/api/books/:id/cover", coversController.GetCover)
		router.DELETE("/api/books/:id/cover", coversController.RefreshCover)
	}

	if cfg.TaskStatus != nil {
		tasksController := NewTasksController(cfg.TaskStatus, cfg.Logger)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
