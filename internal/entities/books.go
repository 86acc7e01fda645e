package entities

import (
	"time"

	"gorm.io/gorm"
)

type ReadingStatus string

const (
	StatusWantToRead       ReadingStatus = "want_to_read"
	StatusCurrentlyReading ReadingStatus = "currently_reading"
	StatusFinished         ReadingStatus = "finished"
	StatusDidNotFinish     ReadingStatus = "did_not_finish"
	StatusUpNext           ReadingStatus = "up_next"
)

// AllReadingStatuses lists every status a user_books row may hold.
var AllReadingStatuses = []ReadingStatus{
	StatusWantToRead,
	StatusCurrentlyReading,
	StatusFinished,
	StatusDidNotFinish,
	StatusUpNext,
}

// Valid reports whether s is one of the recognized reading statuses.
func (s ReadingStatus) Valid() bool {
	for _, known := range AllReadingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100" json:"username"`
	Email     string         `gorm:"size:255" json:"email,omitempty"`
	Token     string         `gorm:"uniqueIndex;size:64" json:"-"` // API token, hidden from JSON
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Book is the canonical catalog entry for a published work, shared by all users.
// ExternalID is the metadata provider's work key (e.g. "/works/OL45883W").
type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ExternalID  string    `gorm:"uniqueIndex;size:128;not null" json:"external_id"`
	EditionID   string    `gorm:"size:128" json:"edition_id,omitempty"`
	Title       string    `gorm:"index;size:512" json:"title"`
	Subtitle    string    `gorm:"size:512" json:"subtitle,omitempty"`
	Authors     []string  `gorm:"serializer:json;type:text" json:"authors"`
	ISBN10      []string  `gorm:"column:isbn10;serializer:json;type:text" json:"isbn10,omitempty"`
	ISBN13      []string  `gorm:"column:isbn13;serializer:json;type:text" json:"isbn13,omitempty"`
	PageCount   *int      `json:"page_count,omitempty"`
	CoverSmall  string    `gorm:"size:2048" json:"cover_small,omitempty"`
	CoverMedium string    `gorm:"size:2048" json:"cover_medium,omitempty"`
	CoverLarge  string    `gorm:"size:2048" json:"cover_large,omitempty"`
	Language    string    `gorm:"size:16" json:"language,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Publishers  []string  `gorm:"serializer:json;type:text" json:"publishers,omitempty"`
	Subjects    []string  `gorm:"serializer:json;type:text" json:"subjects,omitempty"`
	PublishDate string    `gorm:"size:64" json:"publish_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserBook is a user's reading status for one catalog entry.
// At most one row exists per (user_id, book_id).
type UserBook struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	UserID       uint          `gorm:"uniqueIndex:idx_user_books_user_book;not null" json:"user_id"`
	BookID       uint          `gorm:"uniqueIndex:idx_user_books_user_book;index;not null" json:"book_id"`
	Status       ReadingStatus `gorm:"size:32;not null;check:chk_user_books_status,status IN ('want_to_read','currently_reading','finished','did_not_finish','up_next')" json:"status"`
	Rating       *int          `json:"rating,omitempty"`
	DateAdded    *time.Time    `json:"date_added,omitempty"`
	DateStarted  *time.Time    `json:"date_started,omitempty"`
	DateFinished *time.Time    `json:"date_finished,omitempty"`
	Book         Book          `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type ReadingProgress struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_reading_progress_user_book;not null" json:"user_id"`
	BookID    uint      `gorm:"uniqueIndex:idx_reading_progress_user_book;not null" json:"book_id"`
	PagesRead int       `gorm:"not null;default:0" json:"pages_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (UserBook) TableName() string {
	return "user_books"
}

func (ReadingProgress) TableName() string {
	return "reading_progress"
}
