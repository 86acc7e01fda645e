package http

import (
	"context"
	"io"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/goodreads"
	"github.com/mrlokans/readtrack/internal/importer"
	"github.com/mrlokans/readtrack/internal/tasks"
)

// Each controller depends on the narrow interface below rather than on the
// concrete repositories, so handlers can be tested with fakes.

// ImportService runs Goodreads imports.
type ImportService interface {
	Preview(r io.Reader) ([]goodreads.ImportRow, error)
	Import(ctx context.Context, userID uint, rows []goodreads.ImportRow) (importer.Summary, error)
	ImportFile(ctx context.Context, userID uint, r io.Reader) (importer.Summary, error)
	CreateJob(userID uint, rows []goodreads.ImportRow) (*entities.ImportJob, error)
	FailJob(jobID string, cause error)
}

// ImportJobStore reads import history.
type ImportJobStore interface {
	Get(id string) (*entities.ImportJob, error)
	ListForUser(userID uint, limit int) ([]entities.ImportJob, error)
	SetTaskID(id, taskID string) error
}

// ImportEnqueuer hands an import to the background queue.
type ImportEnqueuer interface {
	EnqueueGoodreadsImport(ctx context.Context, task tasks.ImportGoodreadsTask) (string, error)
}

// TaskStatusReader reports background task state.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// ShelfReader lists a user's reading statuses.
type ShelfReader interface {
	ListForUser(userID uint, status entities.ReadingStatus) ([]entities.UserBook, error)
	CountForUser(userID uint) (map[entities.ReadingStatus]int64, error)
}

// BookGetter provides read access to catalog books.
type BookGetter interface {
	GetByID(id uint) (*entities.Book, error)
}

// CatalogSearcher searches the shared book catalog.
type CatalogSearcher interface {
	Search(query string, limit int) ([]entities.Book, error)
}
