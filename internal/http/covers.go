package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/covers"
	"github.com/mrlokans/readtrack/internal/entities"
)

// CoverCache returns a local path for a book's cover image.
type CoverCache interface {
	Get(ctx context.Context, bookID uint, coverURL string) (string, error)
	Invalidate(bookID uint) error
}

type CoversController struct {
	cache CoverCache
	books BookGetter
	log   zerolog.Logger
}

func NewCoversController(cache CoverCache, books BookGetter, log zerolog.Logger) *CoversController {
	return &CoversController{cache: cache, books: books, log: log}
}

// GetCover handles GET /api/books/:id/cover?size=S|M|L
func (cc *CoversController) GetCover(c *gin.Context) {
	book, ok := cc.lookupBook(c)
	if !ok {
		return
	}

	coverURL := covers.URLForSize(book.CoverSmall, book.CoverMedium, book.CoverLarge, c.Query("size"))
	path, err := cc.cache.Get(c.Request.Context(), book.ID, coverURL)
	if errors.Is(err, covers.ErrNoCover) {
		respondNotFound(c, "cover")
		return
	}
	if err != nil {
		cc.log.Warn().Err(err).Uint("book_id", book.ID).Msg("Failed to fetch cover")
		respondError(c, http.StatusBadGateway, "cover unavailable")
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}

// RefreshCover handles DELETE /api/books/:id/cover. Cached images are dropped
// and fetched again on the next GET.
func (cc *CoversController) RefreshCover(c *gin.Context) {
	book, ok := cc.lookupBook(c)
	if !ok {
		return
	}
	if err := cc.cache.Invalidate(book.ID); err != nil {
		respondInternalError(c, cc.log, err, "invalidate cover")
		return
	}
	c.Status(http.StatusNoContent)
}

func (cc *CoversController) lookupBook(c *gin.Context) (*entities.Book, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid id")
		return nil, false
	}

	book, err := cc.books.GetByID(uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "book")
		return nil, false
	}
	if err != nil {
		respondInternalError(c, cc.log, err, "get book")
		return nil, false
	}
	return book, true
}
