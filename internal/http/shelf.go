package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mrlokans/readtrack/internal/entities"
)

// ShelfController exposes the caller's reading statuses.
type ShelfController struct {
	shelves ShelfReader
	log     zerolog.Logger
}

func NewShelfController(shelves ShelfReader, log zerolog.Logger) *ShelfController {
	return &ShelfController{shelves: shelves, log: log}
}

// List handles GET /api/shelf?status=
func (sc *ShelfController) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	status := entities.ReadingStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		respondBadRequest(c, "unknown status")
		return
	}

	items, err := sc.shelves.ListForUser(userID, status)
	if err != nil {
		respondInternalError(c, sc.log, err, "list shelf")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// Stats handles GET /api/shelf/stats
func (sc *ShelfController) Stats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	counts, err := sc.shelves.CountForUser(userID)
	if err != nil {
		respondInternalError(c, sc.log, err, "count shelf")
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}
