package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readtrack/internal/config"
)

func TestHardcoverClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body.Query, "search(")
		assert.Equal(t, "Dune Frank Herbert", body.Variables["query"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"search": {"error": null, "results": {"hits": [
			{"document": {"id": "312460", "title": "Dune", "author_names": ["Frank Herbert"],
			 "isbns": ["9780441013593", "0441013597"], "pages": 617, "release_year": 1965,
			 "description": "<i>Epic</i> science fiction", "image": {"url": "https://img.example/dune.jpg"}}}
		]}}}}`))
	}))
	defer server.Close()

	client := NewHardcoverClient(config.Hardcover{Token: "secret", BaseURL: server.URL})
	assert.Equal(t, "hardcover", client.Name())

	records, err := client.Search(context.Background(), "Dune Frank Herbert", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "hardcover:312460", record.ExternalID)
	assert.Equal(t, "Dune", record.Title)
	assert.Equal(t, []string{"Frank Herbert"}, record.Authors)
	assert.Equal(t, []string{"9780441013593"}, record.ISBN13)
	assert.Equal(t, []string{"0441013597"}, record.ISBN10)
	require.NotNil(t, record.PageCount)
	assert.Equal(t, 617, *record.PageCount)
	assert.Equal(t, "1965", record.PublishDate)
	assert.Equal(t, "Epic science fiction", record.Description)
	assert.Equal(t, "https://img.example/dune.jpg", record.CoverLarge)
}

func TestHardcoverClient_Search_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"search": {"error": "index unavailable", "results": null}}}`))
	}))
	defer server.Close()

	client := NewHardcoverClient(config.Hardcover{Token: "secret", BaseURL: server.URL})

	_, err := client.Search(context.Background(), "Dune", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index unavailable")
}

func TestHardcoverClient_Search_NoHits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"search": {"error": null, "results": {"hits": []}}}}`))
	}))
	defer server.Close()

	client := NewHardcoverClient(config.Hardcover{Token: "secret", BaseURL: server.URL})

	records, err := client.Search(context.Background(), "zzzz", 1)
	require.NoError(t, err)
	assert.Empty(t, records)
}
