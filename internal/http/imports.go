package http

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/goodreads"
	"github.com/mrlokans/readtrack/internal/importer"
	"github.com/mrlokans/readtrack/internal/tasks"
)

// ImportRequest carries the rows a client selected from a preview.
type ImportRequest struct {
	Rows []goodreads.ImportRow `json:"rows"`
}

type PreviewResponse struct {
	Rows  []goodreads.ImportRow `json:"rows"`
	Total int                   `json:"total"`
}

type AsyncImportResponse struct {
	JobID  string `json:"job_id"`
	TaskID string `json:"task_id"`
}

// ImportsController handles Goodreads import endpoints and import history.
type ImportsController struct {
	service        ImportService
	jobs           ImportJobStore
	enqueuer       ImportEnqueuer
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewImportsController creates the controller. enqueuer may be nil when
// background tasks are disabled; the async endpoint then answers 503.
func NewImportsController(service ImportService, jobs ImportJobStore, enqueuer ImportEnqueuer, maxUploadBytes int64, log zerolog.Logger) *ImportsController {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &ImportsController{
		service:        service,
		jobs:           jobs,
		enqueuer:       enqueuer,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// Preview handles POST /api/imports/goodreads/preview
func (ic *ImportsController) Preview(c *gin.Context) {
	file, ok := ic.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	rows, err := ic.service.Preview(file)
	if err != nil {
		ic.respondImportError(c, err)
		return
	}
	c.JSON(http.StatusOK, PreviewResponse{Rows: rows, Total: len(rows)})
}

// Import handles POST /api/imports/goodreads
func (ic *ImportsController) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	summary, err := ic.service.Import(c.Request.Context(), GetUserID(c), req.Rows)
	if err != nil {
		ic.respondImportError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ImportFile handles POST /api/imports/goodreads/file
func (ic *ImportsController) ImportFile(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	file, ok := ic.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	summary, err := ic.service.ImportFile(c.Request.Context(), GetUserID(c), file)
	if err != nil {
		ic.respondImportError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ImportAsync handles POST /api/imports/goodreads/async
func (ic *ImportsController) ImportAsync(c *gin.Context) {
	if ic.enqueuer == nil {
		respondError(c, http.StatusServiceUnavailable, "background tasks are disabled")
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	job, err := ic.service.CreateJob(userID, req.Rows)
	if err != nil {
		ic.respondImportError(c, err)
		return
	}

	taskID, err := ic.enqueuer.EnqueueGoodreadsImport(c.Request.Context(), tasks.ImportGoodreadsTask{
		JobID:  job.ID,
		UserID: userID,
		Rows:   req.Rows,
	})
	if err != nil {
		ic.service.FailJob(job.ID, err)
		respondInternalError(c, ic.log, err, "enqueue import")
		return
	}

	if err := ic.jobs.SetTaskID(job.ID, taskID); err != nil {
		ic.log.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to record task id")
	}

	c.JSON(http.StatusAccepted, AsyncImportResponse{JobID: job.ID, TaskID: taskID})
}

// GetJob handles GET /api/imports/:id
func (ic *ImportsController) GetJob(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	job, err := ic.jobs.Get(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && job.UserID != userID) {
		respondNotFound(c, "import")
		return
	}
	if err != nil {
		respondInternalError(c, ic.log, err, "get import job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobs handles GET /api/imports
func (ic *ImportsController) ListJobs(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	jobs, err := ic.jobs.ListForUser(userID, queryLimit(c, 20, 100))
	if err != nil {
		respondInternalError(c, ic.log, err, "list import jobs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": jobs})
}

// openUpload returns the multipart "file" field, bounded by the upload limit.
func (ic *ImportsController) openUpload(c *gin.Context) (multipart.File, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ic.maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "file too large")
			return nil, false
		}
		respondBadRequest(c, "file is required")
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		respondBadRequest(c, "failed to read uploaded file")
		return nil, false
	}
	return file, true
}

func (ic *ImportsController) respondImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, importer.ErrUnauthenticated):
		respondUnauthorized(c)
	case errors.Is(err, goodreads.ErrUnparseable):
		respondBadRequest(c, "file is not a readable Goodreads export")
	case errors.Is(err, importer.ErrInterrupted):
		respondError(c, http.StatusServiceUnavailable, "import interrupted before all rows were processed")
	default:
		respondInternalError(c, ic.log, err, "import")
	}
}
