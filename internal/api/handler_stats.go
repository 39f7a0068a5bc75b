package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminStats returns counters across every subsystem for the admin
// dashboard. The route is cached, so the numbers may lag writes by the
// configured TTL.
func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
