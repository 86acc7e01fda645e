package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/goodreads"
	"github.com/mrlokans/readtrack/internal/metadata"
	"github.com/mrlokans/readtrack/internal/metrics"
)

// CatalogStore is the catalog persistence used by the Resolver.
type CatalogStore interface {
	FindByISBN13(isbn string) (*entities.Book, error)
	UpsertByExternalID(book *entities.Book) error
}

// TitleFinder looks up a catalog entry by a title fragment.
type TitleFinder interface {
	FindByTitleContaining(title string) (*entities.Book, error)
}

// TitleMatcher finds an existing catalog entry for a row without an ISBN match.
type TitleMatcher interface {
	Match(ctx context.Context, row goodreads.ImportRow) (*entities.Book, error)
}

// SubstringTitleMatcher matches the first catalog entry whose title contains the
// row title, ignoring case. Authors are not compared.
type SubstringTitleMatcher struct {
	finder TitleFinder
}

func NewSubstringTitleMatcher(finder TitleFinder) *SubstringTitleMatcher {
	return &SubstringTitleMatcher{finder: finder}
}

func (m *SubstringTitleMatcher) Match(_ context.Context, row goodreads.ImportRow) (*entities.Book, error) {
	return m.finder.FindByTitleContaining(row.Title)
}

// Resolver maps an import row to a catalog entry.
type Resolver struct {
	catalog  CatalogStore
	titles   TitleMatcher
	provider metadata.Provider
	recorder metrics.Recorder
	log      zerolog.Logger
}

func NewResolver(catalog CatalogStore, titles TitleMatcher, provider metadata.Provider, recorder metrics.Recorder, log zerolog.Logger) *Resolver {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Resolver{
		catalog:  catalog,
		titles:   titles,
		provider: provider,
		recorder: recorder,
		log:      log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns the catalog entry for row, trying in order: ISBN-13 lookup,
// title match, then a provider search whose top hit is persisted. A nil book
// with a nil error means nothing was found. Failing to persist a provider hit is
// logged and reported as not found.
func (r *Resolver) Resolve(ctx context.Context, row goodreads.ImportRow) (*entities.Book, error) {
	if row.ISBN13 != nil && *row.ISBN13 != "" {
		book, err := r.catalog.FindByISBN13(*row.ISBN13)
		if err != nil {
			return nil, fmt.Errorf("isbn lookup: %w", err)
		}
		if book != nil {
			return book, nil
		}
	}

	book, err := r.titles.Match(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("title lookup: %w", err)
	}
	if book != nil {
		return book, nil
	}

	start := time.Now()
	records, err := r.provider.Search(ctx, row.SearchQuery(), 1)
	r.recorder.RecordProviderSearch(r.provider.Name(), err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", r.provider.Name(), err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	book = bookFromRecord(records[0], row)
	if book.ExternalID == "" {
		r.log.Warn().Str("row_id", row.ID).Str("title", row.Title).Msg("Provider result has no external id, skipping")
		return nil, nil
	}
	if err := r.catalog.UpsertByExternalID(book); err != nil {
		r.log.Error().Err(err).
			Str("row_id", row.ID).
			Str("external_id", book.ExternalID).
			Msg("Failed to persist catalog entry")
		return nil, nil
	}

	return book, nil
}

func bookFromRecord(record metadata.Record, row goodreads.ImportRow) *entities.Book {
	book := &entities.Book{
		ExternalID:  record.ExternalID,
		EditionID:   record.EditionID,
		Title:       record.Title,
		Subtitle:    record.Subtitle,
		Authors:     record.Authors,
		ISBN10:      record.ISBN10,
		ISBN13:      record.ISBN13,
		PageCount:   record.PageCount,
		CoverSmall:  record.CoverSmall,
		CoverMedium: record.CoverMedium,
		CoverLarge:  record.CoverLarge,
		Language:    record.Language,
		Description: record.Description,
		Publishers:  record.Publishers,
		Subjects:    record.Subjects,
		PublishDate: record.PublishDate,
	}
	if row.PageCount != nil {
		pages := *row.PageCount
		book.PageCount = &pages
	}
	if book.Title == "" {
		book.Title = row.Title
	}
	if len(book.Authors) == 0 && row.Author != "" {
		book.Authors = []string{row.Author}
	}
	return book
}
