// Package covers keeps local copies of catalog cover images so the API can
// serve them without hitting the metadata provider on every request.
package covers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ErrNoCover is returned when a book has no cover URL for the requested size.
var ErrNoCover = errors.New("no cover available")

// maxCoverBytes bounds a single downloaded image.
const maxCoverBytes = 5 << 20

// Cache stores cover images on disk, keyed by book and source URL.
type Cache struct {
	dir        string
	httpClient *http.Client
}

// NewCache creates the cache directory if needed.
func NewCache(dir string, timeout time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cover cache dir: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Cache{
		dir:        dir,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Get returns the path of the cached image for bookID, downloading coverURL
// on first use.
func (c *Cache) Get(ctx context.Context, bookID uint, coverURL string) (string, error) {
	if coverURL == "" {
		return "", ErrNoCover
	}

	path := filepath.Join(c.dir, c.filename(bookID, coverURL))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := c.download(ctx, coverURL, path); err != nil {
		return "", err
	}
	return path, nil
}

// Invalidate removes every cached size of bookID's cover.
func (c *Cache) Invalidate(bookID uint) error {
	matches, err := filepath.Glob(filepath.Join(c.dir, fmt.Sprintf("cover_%d_*", bookID)))
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) filename(bookID uint, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%d_%x.jpg", bookID, hash[:8])
}

// download writes to a temp file first so readers never see a partial image.
func (c *Cache) download(ctx context.Context, coverURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "readtrack/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch cover: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(c.dir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmp, io.LimitReader(resp.Body, maxCoverBytes)); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// URLForSize picks the cover URL for size "S", "M" or "L", falling back to
// the nearest available size.
func URLForSize(small, medium, large, size string) string {
	var order []string
	switch size {
	case "S", "s":
		order = []string{small, medium, large}
	case "L", "l":
		order = []string{large, medium, small}
	default:
		order = []string{medium, large, small}
	}
	for _, u := range order {
		if u != "" {
			return u
		}
	}
	return ""
}
