// Package metadata searches external book catalogs.
//
// Providers return normalized Records; callers decide what to persist.
// OpenLibraryClient is the default provider, HardcoverClient is used when
// a Hardcover API token is configured.
package metadata

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Provider searches an external catalog with a free-text query.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Record, error)
}

// Record is a provider-neutral search result.
type Record struct {
	ExternalID  string   `json:"external_id"`
	EditionID   string   `json:"edition_id,omitempty"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Authors     []string `json:"authors"`
	Description string   `json:"description,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
	PublishDate string   `json:"publish_date,omitempty"`
	Publishers  []string `json:"publishers,omitempty"`
	ISBN10      []string `json:"isbn10,omitempty"`
	ISBN13      []string `json:"isbn13,omitempty"`
	PageCount   *int     `json:"page_count,omitempty"`
	CoverSmall  string   `json:"cover_small,omitempty"`
	CoverMedium string   `json:"cover_medium,omitempty"`
	CoverLarge  string   `json:"cover_large,omitempty"`
	Language    string   `json:"language,omitempty"`
}

var textPolicy = bluemonday.StrictPolicy()

// plainText strips markup from provider-supplied descriptions.
func plainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// splitISBNs separates a mixed ISBN list into ISBN-10 and ISBN-13 values,
// dropping anything that is neither.
func splitISBNs(isbns []string) (isbn10, isbn13 []string) {
	seen := make(map[string]bool, len(isbns))
	for _, raw := range isbns {
		isbn := normalizeISBN(raw)
		if isbn == "" || seen[isbn] {
			continue
		}
		seen[isbn] = true
		if len(isbn) == 13 {
			isbn13 = append(isbn13, isbn)
		} else {
			isbn10 = append(isbn10, isbn)
		}
	}
	return isbn10, isbn13
}

// normalizeISBN removes hyphens and spaces from ISBN.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	// Basic validation: ISBN-10 or ISBN-13
	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}

	return isbn
}

func positive(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
