package entities

import (
	"time"
)

type ImportSource string

const (
	ImportSourceGoodreads ImportSource = "goodreads"
)

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// ImportJob records one import batch and its outcome.
type ImportJob struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	UserID      uint         `gorm:"index" json:"user_id"`
	Source      ImportSource `gorm:"size:32" json:"source"`
	Status      ImportStatus `gorm:"size:20;default:'pending'" json:"status"`
	TaskID      string       `gorm:"size:64" json:"task_id,omitempty"`
	TotalRows   int          `json:"total_rows"`
	Processed   int          `json:"processed"`
	Imported    int          `json:"imported"`
	Failed      int          `json:"failed"`
	Message     string       `gorm:"size:500" json:"message,omitempty"`
	Error       string       `gorm:"type:text" json:"error,omitempty"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (ImportJob) TableName() string {
	return "import_jobs"
}
