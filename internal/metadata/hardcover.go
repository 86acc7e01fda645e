package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	graphql "github.com/hasura/go-graphql-client"

	"github.com/mrlokans/readtrack/internal/config"
)

const hardcoverSearchQuery = `
	query SearchBooks($query: String!, $perPage: Int!) {
		search(query: $query, query_type: "Book", per_page: $perPage) {
			error
			results
		}
	}`

// HardcoverClient searches the Hardcover catalog through its GraphQL API.
type HardcoverClient struct {
	gql *graphql.Client
}

// NewHardcoverClient creates a client that authenticates with cfg.Token.
func NewHardcoverClient(cfg config.Hardcover) *HardcoverClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultHardcoverURL
	}

	httpClient := &http.Client{
		Timeout: 15 * time.Second,
		Transport: &headerAddingTransport{
			token: cfg.Token,
			rt:    http.DefaultTransport,
		},
	}

	return &HardcoverClient{gql: graphql.NewClient(baseURL, httpClient)}
}

func (c *HardcoverClient) Name() string {
	return "hardcover"
}

func (c *HardcoverClient) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if limit <= 0 {
		limit = 1
	}

	raw, err := c.gql.ExecRaw(ctx, hardcoverSearchQuery, map[string]any{
		"query":   query,
		"perPage": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute search query: %w", err)
	}

	var response struct {
		Search struct {
			Error   string          `json:"error"`
			Results json.RawMessage `json:"results"`
		} `json:"search"`
	}
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if response.Search.Error != "" {
		return nil, fmt.Errorf("search API error: %s", response.Search.Error)
	}
	if len(response.Search.Results) == 0 || string(response.Search.Results) == "null" {
		return nil, nil
	}

	var results hardcoverSearchResults
	if err := json.Unmarshal(response.Search.Results, &results); err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	records := make([]Record, 0, len(results.Hits))
	for _, hit := range results.Hits {
		records = append(records, hit.Document.toRecord())
		if len(records) == limit {
			break
		}
	}
	return records, nil
}

// headerAddingTransport adds the Hardcover authentication headers.
type headerAddingTransport struct {
	token string
	rt    http.RoundTripper
}

func (t *headerAddingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	token := strings.TrimSpace(strings.TrimPrefix(t.token, "Bearer "))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return t.rt.RoundTrip(req)
}

type hardcoverSearchResults struct {
	Hits []struct {
		Document hardcoverDocument `json:"document"`
	} `json:"hits"`
}

type hardcoverDocument struct {
	ID          json.Number `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	AuthorNames []string    `json:"author_names"`
	ISBNs       []string    `json:"isbns"`
	Pages       int         `json:"pages"`
	ReleaseYear int         `json:"release_year"`
	ReleaseDate string      `json:"release_date"`
	Description string      `json:"description"`
	Genres      []string    `json:"genres"`
	Image       struct {
		URL string `json:"url"`
	} `json:"image"`
}

func (d hardcoverDocument) toRecord() Record {
	isbn10, isbn13 := splitISBNs(d.ISBNs)

	record := Record{
		ExternalID:  "hardcover:" + d.ID.String(),
		Title:       d.Title,
		Subtitle:    d.Subtitle,
		Authors:     d.AuthorNames,
		Description: plainText(d.Description),
		Subjects:    d.Genres,
		ISBN10:      isbn10,
		ISBN13:      isbn13,
		PageCount:   positive(d.Pages),
		CoverSmall:  d.Image.URL,
		CoverMedium: d.Image.URL,
		CoverLarge:  d.Image.URL,
	}
	switch {
	case d.ReleaseDate != "":
		record.PublishDate = d.ReleaseDate
	case d.ReleaseYear > 0:
		record.PublishDate = strconv.Itoa(d.ReleaseYear)
	}
	if len(record.Subjects) > maxSubjects {
		record.Subjects = record.Subjects[:maxSubjects]
	}
	return record
}
