package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mocksmith/mocksmith/internal/store"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	store *store.MockStore
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(s *store.MockStore) *HealthHandler {
	return &HealthHandler{store: s}
}

// Healthz checks database connectivity and returns status.
func (h *HealthHandler) Healthz(c *gin.Context) {
	if errPing := h.store.Ping(c.Request.Context()); errPing != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
