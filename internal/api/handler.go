package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"school-resource-backend/internal/model"
	"school-resource-backend/internal/mw"
	"school-resource-backend/internal/store"
)

// SessionManager is the session surface the handlers need: token resolution
// for the middleware plus create/delete for login and logout.
type SessionManager interface {
	mw.SessionResolver
	Create(ctx context.Context, token string, u *model.User) error
	Delete(ctx context.Context, token string) error
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	sessions SessionManager
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, sessions SessionManager) *Handler {
	return &Handler{
		store:    s,
		sessions: sessions,
	}
}

// Health reports liveness. It deliberately avoids the database so load
// balancers keep routing while the database restarts.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// idParam parses the :id path segment. A zero return means the response has
// already been written.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
