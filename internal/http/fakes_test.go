package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/auth"
	"github.com/mrlokans/readtrack/internal/config"
	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/goodreads"
	"github.com/mrlokans/readtrack/internal/importer"
	"github.com/mrlokans/readtrack/internal/tasks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeImportService struct {
	summary    importer.Summary
	importErr  error
	imported   [][]goodreads.ImportRow
	job        *entities.ImportJob
	failedJobs []string
}

func (f *fakeImportService) Preview(r io.Reader) ([]goodreads.ImportRow, error) {
	return goodreads.ParseExport(r)
}

func (f *fakeImportService) Import(_ context.Context, userID uint, rows []goodreads.ImportRow) (importer.Summary, error) {
	if userID == 0 {
		return importer.Summary{}, importer.ErrUnauthenticated
	}
	f.imported = append(f.imported, rows)
	return f.summary, f.importErr
}

func (f *fakeImportService) ImportFile(ctx context.Context, userID uint, r io.Reader) (importer.Summary, error) {
	rows, err := goodreads.ParseExport(r)
	if err != nil {
		return importer.Summary{}, err
	}
	return f.Import(ctx, userID, rows)
}

func (f *fakeImportService) CreateJob(userID uint, rows []goodreads.ImportRow) (*entities.ImportJob, error) {
	if f.job == nil {
		f.job = &entities.ImportJob{ID: "job-1", UserID: userID, TotalRows: len(rows)}
	}
	return f.job, nil
}

func (f *fakeImportService) FailJob(jobID string, _ error) {
	f.failedJobs = append(f.failedJobs, jobID)
}

type fakeJobs struct {
	jobs    map[string]*entities.ImportJob
	taskIDs map[string]string
}

func newFakeJobs(jobs ...*entities.ImportJob) *fakeJobs {
	f := &fakeJobs{jobs: map[string]*entities.ImportJob{}, taskIDs: map[string]string{}}
	for _, j := range jobs {
		f.jobs[j.ID] = j
	}
	return f
}

func (f *fakeJobs) Get(id string) (*entities.ImportJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return job, nil
}

func (f *fakeJobs) ListForUser(userID uint, limit int) ([]entities.ImportJob, error) {
	var out []entities.ImportJob
	for _, j := range f.jobs {
		if j.UserID == userID && len(out) < limit {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeJobs) SetTaskID(id, taskID string) error {
	f.taskIDs[id] = taskID
	return nil
}

type fakeEnqueuer struct {
	err   error
	tasks []tasks.ImportGoodreadsTask
}

func (f *fakeEnqueuer) EnqueueGoodreadsImport(_ context.Context, task tasks.ImportGoodreadsTask) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.tasks = append(f.tasks, task)
	return "task-1", nil
}

type fakeShelves struct {
	items []entities.UserBook
	asked []entities.ReadingStatus
}

func (f *fakeShelves) ListForUser(_ uint, status entities.ReadingStatus) ([]entities.UserBook, error) {
	f.asked = append(f.asked, status)
	return f.items, nil
}

func (f *fakeShelves) CountForUser(uint) (map[entities.ReadingStatus]int64, error) {
	return map[entities.ReadingStatus]int64{entities.StatusFinished: int64(len(f.items))}, nil
}

type fakeCatalog struct {
	books []entities.Book
	err   error
}

func (f *fakeCatalog) Search(string, int) ([]entities.Book, error) {
	return f.books, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping() error { return f.err }

var errBoom = errors.New("boom")

// defaultUsers backs auth.Middleware in "none" mode with a fixed account.
type defaultUsers struct{ id uint }

func (d defaultUsers) GetByToken(string) (*entities.User, error) { return nil, gorm.ErrRecordNotFound }
func (d defaultUsers) GetByID(uint) (*entities.User, error)      { return nil, gorm.ErrRecordNotFound }
func (d defaultUsers) EnsureDefaultUser() (*entities.User, error) {
	return &entities.User{ID: d.id, Username: "local"}, nil
}

// newTestRouter builds the full router with every request authenticated as
// userID, or anonymous when userID is 0.
func newTestRouter(t *testing.T, userID uint, cfg RouterConfig) *gin.Engine {
	t.Helper()
	cfg.Logger = zerolog.Nop()
	if userID != 0 {
		mw, err := auth.NewMiddleware(defaultUsers{id: userID}, nil, config.Auth{Mode: config.AuthModeNone})
		require.NoError(t, err)
		cfg.AuthMiddleware = mw
	}
	return NewRouter(cfg)
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func multipartRequest(t *testing.T, path, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "goodreads_library_export.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func testContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, rr
}
