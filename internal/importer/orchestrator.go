package importer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/goodreads"
	"github.com/mrlokans/readtrack/internal/metrics"
)

// BookResolver finds or creates the catalog entry for a row. A nil book means not found.
type BookResolver interface {
	Resolve(ctx context.Context, row goodreads.ImportRow) (*entities.Book, error)
}

// StatusReconciler stores the user's reading status for a resolved book.
type StatusReconciler interface {
	Reconcile(ctx context.Context, userID, bookID uint, row goodreads.ImportRow) bool
}

// ProgressFunc is called after every processed row.
type ProgressFunc func(p Progress)

type Progress struct {
	Processed int
	Total     int
	Imported  int
	Failed    int
}

// Summary is the outcome of an import batch.
type Summary struct {
	Imported int          `json:"imported"`
	Failed   int          `json:"failed"`
	Message  string       `json:"message"`
	Failures []RowFailure `json:"failures,omitempty"`
}

// RowFailure identifies a row that was not imported.
type RowFailure struct {
	RowID  string `json:"row_id"`
	Title  string `json:"title"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// Orchestrator runs the resolve and reconcile stages over a batch of rows.
type Orchestrator struct {
	resolver   BookResolver
	reconciler StatusReconciler
	recorder   metrics.Recorder
	log        zerolog.Logger
}

func NewOrchestrator(resolver BookResolver, reconciler StatusReconciler, recorder metrics.Recorder, log zerolog.Logger) *Orchestrator {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Orchestrator{
		resolver:   resolver,
		reconciler: reconciler,
		recorder:   recorder,
		log:        log.With().Str("component", "orchestrator").Logger(),
	}
}

// Run imports the selected rows for userID.
func (o *Orchestrator) Run(ctx context.Context, userID uint, rows []goodreads.ImportRow) Summary {
	return o.RunWithProgress(ctx, userID, rows, nil)
}

// RunWithProgress imports the selected rows in input order, one at a time, and
// calls progress after each row. A row that fails in either stage, including by
// panicking, is counted as failed and the batch continues.
func (o *Orchestrator) RunWithProgress(ctx context.Context, userID uint, rows []goodreads.ImportRow, progress ProgressFunc) Summary {
	selected := goodreads.Selected(rows)
	if len(selected) == 0 {
		return Summary{Message: "No books selected for import"}
	}

	var summary Summary
	for i, row := range selected {
		if failure := o.processRow(ctx, userID, row); failure != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, *failure)
			o.recorder.RecordRow(failure.Stage, metrics.OutcomeFailed)
		} else {
			summary.Imported++
			o.recorder.RecordRow(metrics.StageReconcile, metrics.OutcomeImported)
		}

		if progress != nil {
			progress(Progress{
				Processed: i + 1,
				Total:     len(selected),
				Imported:  summary.Imported,
				Failed:    summary.Failed,
			})
		}
	}

	summary.Message = summaryMessage(summary.Imported, summary.Failed)
	o.log.Info().
		Uint("user_id", userID).
		Int("imported", summary.Imported).
		Int("failed", summary.Failed).
		Msg("Import batch finished")

	return summary
}

func (o *Orchestrator) processRow(ctx context.Context, userID uint, row goodreads.ImportRow) (failure *RowFailure) {
	log := o.log.With().Str("row_id", row.ID).Str("title", row.Title).Logger()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("Row import panicked")
			failure = &RowFailure{RowID: row.ID, Title: row.Title, Stage: metrics.StagePanic, Reason: fmt.Sprint(rec)}
		}
	}()

	book, err := o.resolver.Resolve(ctx, row)
	if err != nil {
		log.Warn().Err(err).Str("stage", metrics.StageResolve).Msg("Failed to resolve book")
		return &RowFailure{RowID: row.ID, Title: row.Title, Stage: metrics.StageResolve, Reason: err.Error()}
	}
	if book == nil {
		log.Info().Str("stage", metrics.StageResolve).Msg("No catalog entry found")
		return &RowFailure{RowID: row.ID, Title: row.Title, Stage: metrics.StageResolve, Reason: "book not found"}
	}

	if !o.reconciler.Reconcile(ctx, userID, book.ID, row) {
		return &RowFailure{RowID: row.ID, Title: row.Title, Stage: metrics.StageReconcile, Reason: "reading status not saved"}
	}

	log.Debug().Uint("book_id", book.ID).Msg("Row imported")
	return nil
}

func summaryMessage(imported, failed int) string {
	noun := "books"
	if imported == 1 {
		noun = "book"
	}
	if failed == 0 {
		return fmt.Sprintf("Imported %d %s", imported, noun)
	}
	return fmt.Sprintf("Imported %d %s, %d failed", imported, noun, failed)
}
