package goodreads

import (
	"strings"

	"github.com/mrlokans/readtrack/internal/entities"
)

var shelfStatuses = map[string]entities.ReadingStatus{
	"read":      entities.StatusFinished,
	"finished":  entities.StatusFinished,
	"completed": entities.StatusFinished,

	"currently-reading": entities.StatusCurrentlyReading,
	"reading":           entities.StatusCurrentlyReading,
	"in-progress":       entities.StatusCurrentlyReading,

	"to-read":      entities.StatusWantToRead,
	"want-to-read": entities.StatusWantToRead,
	"tbr":          entities.StatusWantToRead,
	"wishlist":     entities.StatusWantToRead,

	"dnf":            entities.StatusDidNotFinish,
	"did-not-finish": entities.StatusDidNotFinish,
	"abandoned":      entities.StatusDidNotFinish,

	"up-next": entities.StatusUpNext,
	"queue":   entities.StatusUpNext,
	"next":    entities.StatusUpNext,
}

// MapShelf maps a shelf label to a reading status. Unknown labels map to want_to_read.
func MapShelf(label string) entities.ReadingStatus {
	if status, ok := shelfStatuses[strings.ToLower(strings.TrimSpace(label))]; ok {
		return status
	}
	return entities.StatusWantToRead
}
