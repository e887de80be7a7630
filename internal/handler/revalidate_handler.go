package handler

import (
	"net/http"

	"github.com/yourorg/crypto-dashboard/internal/middleware"
	"github.com/yourorg/crypto-dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RevalidateHandler invalidates cached responses for a page path
type RevalidateHandler struct {
	cache  *middleware.ResponseCache
	logger *zap.Logger
}

// NewRevalidateHandler creates a new revalidate handler. cache may be nil
// when the response cache is disabled.
func NewRevalidateHandler(cache *middleware.ResponseCache, logger *zap.Logger) *RevalidateHandler {
	return &RevalidateHandler{
		cache:  cache,
		logger: logger,
	}
}

// Revalidate drops every cached response for the given path
// POST /api/revalidate?path=
func (h *RevalidateHandler) Revalidate(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "path query parameter is required")
		return
	}

	if h.cache == nil {
		c.JSON(http.StatusOK, gin.H{"revalidated": false, "reason": "response cache disabled"})
		return
	}

	deleted, err := h.cache.InvalidatePath(c.Request.Context(), path)
	if err != nil {
		h.logger.Error("Failed to invalidate path",
			zap.Error(err),
			zap.String("path", path))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to invalidate cache")
		return
	}

	c.JSON(http.StatusOK, gin.H{"revalidated": true, "path": path, "deleted": deleted})
}
