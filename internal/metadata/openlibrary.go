package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mrlokans/readtrack/internal/config"
)

const (
	openLibraryCoversURL = "https://covers.openlibrary.org"
	openLibraryUserAgent = "readtrack/1.0 (https://github.com/mrlokans/readtrack)"
	openLibraryFields    = "key,title,subtitle,author_name,isbn,number_of_pages_median,cover_i," +
		"cover_edition_key,language,publisher,publish_date,subject,first_publish_year"
	maxSubjects = 10
)

// OpenLibraryClient searches the OpenLibrary catalog.
type OpenLibraryClient struct {
	httpClient *http.Client
	baseURL    string
	coversURL  string
	limiter    *rate.Limiter
	maxRetries int
}

// NewOpenLibraryClient creates a client limited to cfg.RequestsPerSecond requests.
// A non-positive rate disables limiting.
func NewOpenLibraryClient(cfg config.OpenLibrary) *OpenLibraryClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultOpenLibraryURL
	}

	return &OpenLibraryClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		coversURL:  openLibraryCoversURL,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: 2,
	}
}

func (c *OpenLibraryClient) Name() string {
	return "openlibrary"
}

// Search queries search.json and returns up to limit records. Work descriptions
// are fetched for each hit on a best-effort basis.
func (c *OpenLibraryClient) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if limit <= 0 {
		limit = 1
	}

	searchURL := fmt.Sprintf("%s/search.json?q=%s&fields=%s&limit=%d",
		c.baseURL, url.QueryEscape(query), openLibraryFields, limit)

	var result openLibrarySearchResult
	if err := c.get(ctx, searchURL, &result); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	records := make([]Record, 0, len(result.Docs))
	for i := range result.Docs {
		doc := &result.Docs[i]
		record := c.convertSearchDoc(doc)
		if description, err := c.fetchWorkDescription(ctx, doc.Key); err == nil {
			record.Description = description
		}
		records = append(records, record)
		if len(records) == limit {
			break
		}
	}

	return records, nil
}

func (c *OpenLibraryClient) convertSearchDoc(doc *openLibrarySearchDoc) Record {
	isbn10, isbn13 := splitISBNs(doc.ISBN)

	record := Record{
		ExternalID: doc.Key,
		Title:      doc.Title,
		Subtitle:   doc.Subtitle,
		Authors:    doc.AuthorName,
		ISBN10:     isbn10,
		ISBN13:     isbn13,
		PageCount:  positive(doc.NumberOfPagesMedian),
		Publishers: doc.Publisher,
	}
	if doc.CoverEditionKey != "" {
		record.EditionID = "/books/" + doc.CoverEditionKey
	}

	if len(doc.PublishDate) > 0 {
		record.PublishDate = doc.PublishDate[0]
	} else if doc.FirstPublishYear > 0 {
		record.PublishDate = strconv.Itoa(doc.FirstPublishYear)
	}

	if doc.CoverI != 0 {
		record.CoverSmall = c.coverURL(doc.CoverI, "S")
		record.CoverMedium = c.coverURL(doc.CoverI, "M")
		record.CoverLarge = c.coverURL(doc.CoverI, "L")
	}

	if len(doc.Language) > 0 {
		record.Language = doc.Language[0]
	}

	record.Subjects = doc.Subject
	if len(record.Subjects) > maxSubjects {
		record.Subjects = record.Subjects[:maxSubjects]
	}

	return record
}

func (c *OpenLibraryClient) coverURL(coverID int, size string) string {
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", c.coversURL, coverID, size)
}

// fetchWorkDescription loads the work record and returns its description as plain text.
func (c *OpenLibraryClient) fetchWorkDescription(ctx context.Context, workKey string) (string, error) {
	if !strings.HasPrefix(workKey, "/works/") {
		return "", fmt.Errorf("not a work key: %q", workKey)
	}

	var work openLibraryWork
	if err := c.get(ctx, c.baseURL+workKey+".json", &work); err != nil {
		return "", err
	}

	// Descriptions are either a string or {type, value}.
	switch v := work.Description.(type) {
	case string:
		return plainText(v), nil
	case map[string]any:
		if val, ok := v["value"].(string); ok {
			return plainText(val), nil
		}
	}
	return "", nil
}

func (c *OpenLibraryClient) get(ctx context.Context, target string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.do(ctx, target, out)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *OpenLibraryClient) do(ctx context.Context, target string, out any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", openLibraryUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return true, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}

// OpenLibrary API response types (internal)

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	Subtitle            string   `json:"subtitle"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    int      `json:"first_publish_year"`
	PublishDate         []string `json:"publish_date"`
	Publisher           []string `json:"publisher"`
	ISBN                []string `json:"isbn"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
	CoverI              int      `json:"cover_i"`
	CoverEditionKey     string   `json:"cover_edition_key"`
	Language            []string `json:"language"`
	Subject             []string `json:"subject"`
}

type openLibraryWork struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description any    `json:"description"`
}
