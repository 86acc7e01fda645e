package importer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrlokans/readtrack/internal/database"
	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/goodreads"
)

// ShelfStore is the reading-status persistence used by the Reconciler.
type ShelfStore interface {
	UpsertStatus(ub *entities.UserBook) database.UpsertResult
	DeleteStatus(userID, bookID uint) error
	InsertStatus(ub *entities.UserBook) error
	UpsertProgress(userID, bookID uint, pagesRead int) error
}

// Reconciler writes a user's reading status for a resolved catalog entry.
type Reconciler struct {
	shelves ShelfStore
	now     func() time.Time
	log     zerolog.Logger
}

func NewReconciler(shelves ShelfStore, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		shelves: shelves,
		now:     func() time.Time { return time.Now().UTC() },
		log:     log.With().Str("component", "reconciler").Logger(),
	}
}

// Reconcile upserts the (userID, bookID) reading status from row and reports
// whether it was stored. When the upsert is rejected by a constraint the
// existing row is deleted and the status inserted again. Rows moved to
// currently_reading also get a reading-progress row; failing to write it does
// not fail the reconcile.
func (r *Reconciler) Reconcile(_ context.Context, userID, bookID uint, row goodreads.ImportRow) bool {
	log := r.log.With().Str("row_id", row.ID).Uint("book_id", bookID).Logger()

	status := row.Status
	if status == "" {
		status = goodreads.MapShelf(row.Shelf)
	}
	if !status.Valid() {
		log.Error().Str("status", string(status)).Msg("Unknown reading status")
		return false
	}

	result := r.shelves.UpsertStatus(r.payload(userID, bookID, status, row))
	switch result.Kind {
	case database.UpsertOK:
	case database.UpsertConstraintViolation:
		log.Warn().Err(result.Err).Msg("Status upsert rejected, replacing existing row")
		if err := r.shelves.DeleteStatus(userID, bookID); err != nil {
			log.Error().Err(err).Msg("Failed to delete existing status")
			return false
		}
		if err := r.shelves.InsertStatus(r.payload(userID, bookID, status, row)); err != nil {
			log.Error().Err(err).Msg("Failed to insert status after delete")
			return false
		}
	default:
		log.Error().Err(result.Err).Msg("Failed to upsert status")
		return false
	}

	if status == entities.StatusCurrentlyReading {
		if err := r.shelves.UpsertProgress(userID, bookID, 0); err != nil {
			log.Warn().Err(err).Msg("Failed to create reading progress")
		}
	}

	return true
}

func (r *Reconciler) payload(userID, bookID uint, status entities.ReadingStatus, row goodreads.ImportRow) *entities.UserBook {
	ub := &entities.UserBook{
		UserID:       userID,
		BookID:       bookID,
		Status:       status,
		DateAdded:    row.DateAdded,
		DateFinished: row.DateFinished,
		UpdatedAt:    r.now(),
	}
	if row.Rating > 0 {
		rating := row.Rating
		ub.Rating = &rating
	}
	return ub
}
