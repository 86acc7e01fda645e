package goodreads

import (
	"encoding/json"
	"time"

	"github.com/mrlokans/readtrack/internal/entities"
)

// ImportRow is one book parsed from an export.
type ImportRow struct {
	// ID is assigned at parse time so clients can refer to rows while selecting.
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Author       string                 `json:"author"`
	ISBN13       *string                `json:"isbn13"`
	Rating       int                    `json:"rating"`
	Shelf        string                 `json:"shelf"`
	Status       entities.ReadingStatus `json:"status"`
	DateAdded    *time.Time             `json:"date_added"`
	DateFinished *time.Time             `json:"date_finished"`
	PageCount    *int                   `json:"page_count"`
	Selected     bool                   `json:"selected"`
}

// UnmarshalJSON decodes a row, treating a missing "selected" field as selected.
// Only an explicit false deselects a row.
func (r *ImportRow) UnmarshalJSON(data []byte) error {
	type plain ImportRow
	row := plain{Selected: true}
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	*r = ImportRow(row)
	return nil
}

// SearchQuery is the free-text query used to look the row up in a metadata provider.
func (r ImportRow) SearchQuery() string {
	if r.Author == "" {
		return r.Title
	}
	return r.Title + " " + r.Author
}

// Selected returns the rows the user kept selected, preserving order.
func Selected(rows []ImportRow) []ImportRow {
	selected := make([]ImportRow, 0, len(rows))
	for _, row := range rows {
		if row.Selected {
			selected = append(selected, row)
		}
	}
	return selected
}
