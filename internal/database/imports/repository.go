// Package imports stores the history of library import batches.
package imports

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create records a pending import job for userID. The job receives a new UUID.
func (r *Repository) Create(userID uint, source entities.ImportSource, totalRows int) (*entities.ImportJob, error) {
	job := &entities.ImportJob{
		ID:        uuid.NewString(),
		UserID:    userID,
		Source:    source,
		Status:    entities.ImportStatusPending,
		TotalRows: totalRows,
	}
	if err := r.db.Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// SetTaskID links the job to the background task that processes it.
func (r *Repository) SetTaskID(id, taskID string) error {
	return r.update(id, map[string]any{"task_id": taskID})
}

func (r *Repository) MarkRunning(id string) error {
	now := time.Now().UTC()
	return r.update(id, map[string]any{
		"status":     entities.ImportStatusRunning,
		"started_at": &now,
	})
}

// UpdateProgress stores per-row counters while the batch is running.
func (r *Repository) UpdateProgress(id string, processed, imported, failed int) error {
	return r.update(id, map[string]any{
		"processed": processed,
		"imported":  imported,
		"failed":    failed,
	})
}

func (r *Repository) Complete(id string, imported, failed int, message string) error {
	now := time.Now().UTC()
	return r.update(id, map[string]any{
		"status":       entities.ImportStatusCompleted,
		"processed":    imported + failed,
		"imported":     imported,
		"failed":       failed,
		"message":      truncate(message, 500),
		"completed_at": &now,
	})
}

func (r *Repository) Fail(id string, cause error) error {
	now := time.Now().UTC()
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return r.update(id, map[string]any{
		"status":       entities.ImportStatusFailed,
		"error":        msg,
		"completed_at": &now,
	})
}

func (r *Repository) Get(id string) (*entities.ImportJob, error) {
	var job entities.ImportJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListForUser returns the user's import jobs, newest first.
func (r *Repository) ListForUser(userID uint, limit int) ([]entities.ImportJob, error) {
	var jobs []entities.ImportJob
	q := r.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&jobs).Error
	return jobs, err
}

// DeleteOlderThan removes finished jobs created before cutoff and returns how many were deleted.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("created_at < ?", cutoff).
		Where("status IN ?", []entities.ImportStatus{entities.ImportStatusCompleted, entities.ImportStatusFailed}).
		Delete(&entities.ImportJob{})
	return result.RowsAffected, result.Error
}

func (r *Repository) update(id string, fields map[string]any) error {
	result := r.db.Model(&entities.ImportJob{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
