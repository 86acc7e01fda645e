package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readtrack/internal/config"
)

func newTestOpenLibraryClient(serverURL string) *OpenLibraryClient {
	client := NewOpenLibraryClient(config.OpenLibrary{
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	})
	client.coversURL = "https://covers.example.org"
	client.maxRetries = 0
	return client
}

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"978-0-13-468599-1", "9780134685991"},
		{"0-13-468599-6", "0134685996"},
		{"978 0 13 468599 1", "9780134685991"},
		{"123", ""},
		{"12345678901234", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeISBN(tt.input))
		})
	}
}

func TestSplitISBNs(t *testing.T) {
	isbn10, isbn13 := splitISBNs([]string{"0441013597", "9780441013593", "9780441013593", "bogus"})

	assert.Equal(t, []string{"0441013597"}, isbn10)
	assert.Equal(t, []string{"9780441013593"}, isbn13)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Set on the desert planet Arrakis & beyond.",
		plainText(`<p>Set on the <b>desert planet</b> Arrakis &amp; beyond.</p><script>alert(1)</script>`))
	assert.Equal(t, "", plainText(""))
}

func TestOpenLibraryClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search.json":
			assert.Equal(t, "Dune Frank Herbert", r.URL.Query().Get("q"))
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			assert.Contains(t, r.URL.Query().Get("fields"), "isbn")
			assert.NotEmpty(t, r.Header.Get("User-Agent"))

			_ = json.NewEncoder(w).Encode(map[string]any{
				"numFound": 1,
				"docs": []map[string]any{{
					"key":                    "/works/OL893415W",
					"title":                  "Dune",
					"author_name":            []string{"Frank Herbert"},
					"isbn":                   []string{"0441013597", "9780441013593"},
					"number_of_pages_median": 604,
					"cover_i":                11481354,
					"cover_edition_key":      "OL26242482M",
					"language":               []string{"eng"},
					"publisher":              []string{"Ace Books"},
					"first_publish_year":     1965,
				}},
			})
		case "/works/OL893415W.json":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"key":         "/works/OL893415W",
				"description": map[string]string{"type": "/type/text", "value": "<p>Desert planet.</p>"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestOpenLibraryClient(server.URL)

	records, err := client.Search(context.Background(), "Dune Frank Herbert", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "/works/OL893415W", record.ExternalID)
	assert.Equal(t, "/books/OL26242482M", record.EditionID)
	assert.Equal(t, "Dune", record.Title)
	assert.Equal(t, []string{"Frank Herbert"}, record.Authors)
	assert.Equal(t, []string{"0441013597"}, record.ISBN10)
	assert.Equal(t, []string{"9780441013593"}, record.ISBN13)
	require.NotNil(t, record.PageCount)
	assert.Equal(t, 604, *record.PageCount)
	assert.Equal(t, "https://covers.example.org/b/id/11481354-S.jpg", record.CoverSmall)
	assert.Equal(t, "https://covers.example.org/b/id/11481354-M.jpg", record.CoverMedium)
	assert.Equal(t, "https://covers.example.org/b/id/11481354-L.jpg", record.CoverLarge)
	assert.Equal(t, "eng", record.Language)
	assert.Equal(t, "1965", record.PublishDate)
	assert.Equal(t, "Desert planet.", record.Description)
}

func TestOpenLibraryClient_Search_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"numFound": 0, "docs": []}`))
	}))
	defer server.Close()

	records, err := newTestOpenLibraryClient(server.URL).Search(context.Background(), "zzzz", 1)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOpenLibraryClient_Search_DescriptionFailureIgnored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"numFound": 1, "docs": [{"key": "/works/OL1W", "title": "Foo"}]}`))
	}))
	defer server.Close()

	records, err := newTestOpenLibraryClient(server.URL).Search(context.Background(), "Foo", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Foo", records[0].Title)
	assert.Empty(t, records[0].Description)
	assert.Nil(t, records[0].PageCount)
}

func TestOpenLibraryClient_Search_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			http.NotFound(w, r)
			return
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"numFound": 1, "docs": [{"key": "/works/OL1W", "title": "Foo"}]}`))
	}))
	defer server.Close()

	client := newTestOpenLibraryClient(server.URL)
	client.maxRetries = 1

	records, err := client.Search(context.Background(), "Foo", 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenLibraryClient_Search_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestOpenLibraryClient(server.URL)
	client.maxRetries = 2

	_, err := client.Search(context.Background(), "Foo", 1)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenLibraryClient_Search_EmptyQuery(t *testing.T) {
	_, err := newTestOpenLibraryClient("http://127.0.0.1:0").Search(context.Background(), "  ", 1)
	assert.Error(t, err)
}
