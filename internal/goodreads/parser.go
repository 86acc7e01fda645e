package goodreads

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrUnparseable is returned when the input is not tabular data at all.
var ErrUnparseable = errors.New("input is not a valid Goodreads export")

// Export column names, lower-cased.
const (
	colTitle     = "title"
	colAuthor    = "author"
	colISBN13    = "isbn13"
	colRating    = "my rating"
	colShelf     = "exclusive shelf"
	colDateAdded = "date added"
	colDateRead  = "date read"
	colPages     = "number of pages"
)

// ParseExport parses a Goodreads CSV export. Rows without a title are skipped,
// as are data lines the CSV reader cannot decode. Missing columns yield empty values.
func ParseExport(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrUnparseable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrUnparseable, err)
	}

	headerIndex := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if h == "" {
			continue
		}
		if _, dup := headerIndex[h]; !dup {
			headerIndex[h] = i
		}
	}
	if len(headerIndex) == 0 {
		return nil, fmt.Errorf("%w: header row has no column names", ErrUnparseable)
	}

	rows := make([]ImportRow, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
		}

		title := getCSVValue(record, headerIndex, colTitle)
		if title == "" {
			continue
		}

		shelf := getCSVValue(record, headerIndex, colShelf)
		rows = append(rows, ImportRow{
			ID:           uuid.NewString(),
			Title:        title,
			Author:       getCSVValue(record, headerIndex, colAuthor),
			ISBN13:       CleanISBN(getCSVValue(record, headerIndex, colISBN13)),
			Rating:       parseRating(getCSVValue(record, headerIndex, colRating)),
			Shelf:        shelf,
			Status:       MapShelf(shelf),
			DateAdded:    ParseDate(getCSVValue(record, headerIndex, colDateAdded)),
			DateFinished: ParseDate(getCSVValue(record, headerIndex, colDateRead)),
			PageCount:    parsePageCount(getCSVValue(record, headerIndex, colPages)),
			Selected:     true,
		})
	}

	return rows, nil
}

func getCSVValue(record []string, headerIndex map[string]int, header string) string {
	if idx, ok := headerIndex[header]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

// CleanISBN strips every non-digit character. Returns nil when nothing remains.
func CleanISBN(s string) *string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	cleaned := b.String()
	return &cleaned
}

func parseRating(s string) int {
	rating, err := strconv.Atoi(s)
	if err != nil || rating < 0 || rating > 5 {
		return 0
	}
	return rating
}

func parsePageCount(s string) *int {
	pages, err := strconv.Atoi(s)
	if err != nil || pages <= 0 {
		return nil
	}
	return &pages
}
