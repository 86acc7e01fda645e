// Package catalog provides database operations for catalog entries (books).
//
// Catalog entries are shared across users and keyed by the metadata provider's
// external id; UpsertByExternalID is the only write path used by imports.
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	book, err := repo.FindByISBN13("9780441013593")
package catalog

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/readtrack/internal/entities"
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a catalog entry by its ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByISBN13 returns the first catalog entry whose ISBN-13 list contains isbn.
// Returns nil, nil when there is no match.
func (r *Repository) FindByISBN13(isbn string) (*entities.Book, error) {
	if isbn == "" {
		return nil, nil
	}
	// ISBN lists are stored as JSON arrays; match the quoted element.
	var book entities.Book
	err := r.db.Where("isbn13 LIKE ?", `%"`+isbn+`"%`).Order("id ASC").First(&book).Error
	return firstOrNil(&book, err)
}

// FindByTitleContaining returns the first catalog entry whose title contains title,
// ignoring case. Returns nil, nil when there is no match.
func (r *Repository) FindByTitleContaining(title string) (*entities.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}
	var book entities.Book
	err := r.db.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(title))+"%").
		Order("id ASC").
		First(&book).Error
	return firstOrNil(&book, err)
}

// UpsertByExternalID inserts book or, when a row with the same external id exists,
// refreshes its metadata. book.ID is set to the persisted row's ID.
func (r *Repository) UpsertByExternalID(book *entities.Book) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"edition_id", "title", "subtitle", "authors", "isbn10", "isbn13", "page_count",
			"cover_small", "cover_medium", "cover_large", "language", "description",
			"publishers", "subjects", "publish_date", "updated_at",
		}),
	}).Create(book).Error
	if err != nil {
		return err
	}

	// SQLite does not report the conflicting row's id on update; reload it.
	var stored entities.Book
	if err := r.db.Where("external_id = ?", book.ExternalID).First(&stored).Error; err != nil {
		return err
	}
	*book = stored
	return nil
}

// Search returns catalog entries whose title matches query (case-insensitive partial match).
func (r *Repository) Search(query string, limit int) ([]entities.Book, error) {
	var books []entities.Book
	q := r.db.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(strings.TrimSpace(query)))+"%").
		Order("title ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&books).Error
	return books, err
}

// Count returns the number of catalog entries.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

func firstOrNil(book *entities.Book, err error) (*entities.Book, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// escapeLike escapes LIKE wildcards so titles are matched literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
