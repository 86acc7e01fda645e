package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type BooksController struct {
	catalog CatalogSearcher
	log     zerolog.Logger
}

func NewBooksController(catalog CatalogSearcher, log zerolog.Logger) *BooksController {
	return &BooksController{catalog: catalog, log: log}
}

// Search handles GET /api/books/search?q=
func (bc *BooksController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}

	books, err := bc.catalog.Search(query, queryLimit(c, 20, 100))
	if err != nil {
		respondInternalError(c, bc.log, err, "search catalog")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}
