// Package shelves stores per-user reading statuses and reading progress.
package shelves

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/readtrack/internal/database"
	"github.com/mrlokans/readtrack/internal/entities"
)

// Repository handles user_books and reading_progress operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new shelves repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertStatus inserts the user's reading status for a book or updates the existing
// row for the same (user_id, book_id). Dates are only overwritten when set on ub.
func (r *Repository) UpsertStatus(ub *entities.UserBook) database.UpsertResult {
	if ub.UpdatedAt.IsZero() {
		ub.UpdatedAt = time.Now().UTC()
	}

	columns := []string{"status", "rating", "updated_at"}
	if ub.DateAdded != nil {
		columns = append(columns, "date_added")
	}
	if ub.DateStarted != nil {
		columns = append(columns, "date_started")
	}
	if ub.DateFinished != nil {
		columns = append(columns, "date_finished")
	}

	err := r.db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(ub).Error

	return database.ResultOf(err)
}

// DeleteStatus removes the reading status row for (userID, bookID), if any.
func (r *Repository) DeleteStatus(userID, bookID uint) error {
	return r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.UserBook{}).Error
}

// InsertStatus performs a plain insert without conflict handling.
func (r *Repository) InsertStatus(ub *entities.UserBook) error {
	ub.ID = 0
	if ub.UpdatedAt.IsZero() {
		ub.UpdatedAt = time.Now().UTC()
	}
	return r.db.Omit(clause.Associations).Create(ub).Error
}

// GetStatus returns the reading status for (userID, bookID), or nil if none exists.
func (r *Repository) GetStatus(userID, bookID uint) (*entities.UserBook, error) {
	var ub entities.UserBook
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&ub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ub, nil
}

// ListForUser returns the user's reading statuses with their books, most recently
// updated first. An empty status lists every shelf.
func (r *Repository) ListForUser(userID uint, status entities.ReadingStatus) ([]entities.UserBook, error) {
	var rows []entities.UserBook
	query := r.db.Preload("Book").Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("updated_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

// CountForUser returns the number of reading status rows per status for the user.
func (r *Repository) CountForUser(userID uint) (map[entities.ReadingStatus]int64, error) {
	var results []struct {
		Status entities.ReadingStatus
		Count  int64
	}
	err := r.db.Model(&entities.UserBook{}).
		Select("status, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entities.ReadingStatus]int64, len(results))
	for _, r := range results {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// UpsertProgress sets pages read for (userID, bookID), creating the row if needed.
func (r *Repository) UpsertProgress(userID, bookID uint, pagesRead int) error {
	progress := entities.ReadingProgress{
		UserID:    userID,
		BookID:    bookID,
		PagesRead: pagesRead,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"pages_read", "updated_at"}),
	}).Create(&progress).Error
}

// GetProgress returns the reading progress for (userID, bookID), or nil if none exists.
func (r *Repository) GetProgress(userID, bookID uint) (*entities.ReadingProgress, error) {
	var progress entities.ReadingProgress
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
