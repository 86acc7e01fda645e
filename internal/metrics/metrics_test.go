package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordRow(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRow(StageResolve, OutcomeFailed)
	c.RecordRow(StageReconcile, OutcomeImported)
	c.RecordRow(StageReconcile, OutcomeImported)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.rows.WithLabelValues(StageResolve, OutcomeFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.rows.WithLabelValues(StageReconcile, OutcomeImported)))
}

func TestCollector_RecordBatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBatch("goodreads", 4, 1, 2*time.Second)
	c.RecordBatch("goodreads", 1, 0, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.batches.WithLabelValues("goodreads")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.booksImported))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.booksFailed))
	assert.Equal(t, 1, testutil.CollectAndCount(c.batchDuration))
}

func TestCollector_RecordProviderSearch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordProviderSearch("openlibrary", nil, 100*time.Millisecond)
	c.RecordProviderSearch("openlibrary", errors.New("timeout"), time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.providerCalls.WithLabelValues("openlibrary", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.providerCalls.WithLabelValues("openlibrary", "error")))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordBatch("goodreads", 1, 0, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), "readtrack_import_books_imported_total 1")
}

func TestNop_ImplementsRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordRow(StageResolve, OutcomeFailed)
	r.RecordBatch("goodreads", 0, 0, 0)
	r.RecordProviderSearch("openlibrary", nil, 0)
}
