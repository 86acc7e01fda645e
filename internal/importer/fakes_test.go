package importer

import (
	"context"
	"errors"
	"sync"

	"github.com/mrlokans/readtrack/internal/database"
	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/goodreads"
	"github.com/mrlokans/readtrack/internal/metadata"
)

type fakeCatalog struct {
	byISBN    map[string]*entities.Book
	byTitle   map[string]*entities.Book
	upserted  []*entities.Book
	upsertErr error
	nextID    uint
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		byISBN:  make(map[string]*entities.Book),
		byTitle: make(map[string]*entities.Book),
		nextID:  100,
	}
}

func (f *fakeCatalog) FindByISBN13(isbn string) (*entities.Book, error) {
	return f.byISBN[isbn], nil
}

func (f *fakeCatalog) FindByTitleContaining(title string) (*entities.Book, error) {
	return f.byTitle[title], nil
}

func (f *fakeCatalog) UpsertByExternalID(book *entities.Book) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.nextID++
	book.ID = f.nextID
	f.upserted = append(f.upserted, book)
	return nil
}

type fakeProvider struct {
	records []metadata.Record
	err     error
	queries []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, query string, limit int) ([]metadata.Record, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

type fakeShelves struct {
	upsertResults []database.UpsertResult
	deleteErr     error
	insertErr     error
	progressErr   error

	upserts  []entities.UserBook
	deletes  int
	inserts  []entities.UserBook
	progress []uint
}

func (f *fakeShelves) UpsertStatus(ub *entities.UserBook) database.UpsertResult {
	f.upserts = append(f.upserts, *ub)
	if len(f.upsertResults) == 0 {
		return database.UpsertResult{Kind: database.UpsertOK}
	}
	result := f.upsertResults[0]
	f.upsertResults = f.upsertResults[1:]
	return result
}

func (f *fakeShelves) DeleteStatus(userID, bookID uint) error {
	f.deletes++
	return f.deleteErr
}

func (f *fakeShelves) InsertStatus(ub *entities.UserBook) error {
	f.inserts = append(f.inserts, *ub)
	return f.insertErr
}

func (f *fakeShelves) UpsertProgress(userID, bookID uint, pagesRead int) error {
	f.progress = append(f.progress, bookID)
	return f.progressErr
}

// scriptedResolver resolves rows by title; titles in panics or errs misbehave.
type scriptedResolver struct {
	books  map[string]*entities.Book
	panics map[string]bool
	errs   map[string]error
	calls  []string
}

func (r *scriptedResolver) Resolve(_ context.Context, row goodreads.ImportRow) (*entities.Book, error) {
	r.calls = append(r.calls, row.Title)
	if r.panics[row.Title] {
		panic("resolver exploded")
	}
	if err := r.errs[row.Title]; err != nil {
		return nil, err
	}
	return r.books[row.Title], nil
}

type recordingReconciler struct {
	fail  map[string]bool
	calls []string
}

func (r *recordingReconciler) Reconcile(_ context.Context, userID, bookID uint, row goodreads.ImportRow) bool {
	r.calls = append(r.calls, row.Title)
	return !r.fail[row.Title]
}

type fakeJobs struct {
	mu        sync.Mutex
	jobs      map[string]*entities.ImportJob
	createErr error
	progress  [][3]int
	seq       int
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: make(map[string]*entities.ImportJob)}
}

func (f *fakeJobs) Create(userID uint, source entities.ImportSource, totalRows int) (*entities.ImportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	job := &entities.ImportJob{
		ID:        string(rune('a' + f.seq)),
		UserID:    userID,
		Source:    source,
		Status:    entities.ImportStatusPending,
		TotalRows: totalRows,
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobs) get(id string) (*entities.ImportJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, errors.New("job not found")
	}
	return job, nil
}

func (f *fakeJobs) MarkRunning(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, err := f.get(id)
	if err != nil {
		return err
	}
	job.Status = entities.ImportStatusRunning
	return nil
}

func (f *fakeJobs) UpdateProgress(id string, processed, imported, failed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, err := f.get(id)
	if err != nil {
		return err
	}
	job.Processed = processed
	f.progress = append(f.progress, [3]int{processed, imported, failed})
	return nil
}

func (f *fakeJobs) Complete(id string, imported, failed int, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, err := f.get(id)
	if err != nil {
		return err
	}
	job.Status = entities.ImportStatusCompleted
	job.Imported = imported
	job.Failed = failed
	job.Message = message
	return nil
}

func (f *fakeJobs) Fail(id string, cause error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, err := f.get(id)
	if err != nil {
		return err
	}
	job.Status = entities.ImportStatusFailed
	job.Error = cause.Error()
	return nil
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }
