package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/freshspot/jobharvest/internal/repository"
)

// RunHandler exposes harvest run history.
type RunHandler struct {
	runs *repository.RunRepository
}

// NewRunHandler creates a new run handler.
// Parameters:
//   - runs: run repository instance.
//
// Returns:
//   - *RunHandler: initialized handler.
func NewRunHandler(runs *repository.RunRepository) *RunHandler {
	return &RunHandler{runs: runs}
}

// ListRuns handles GET /api/v1/runs.
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > maxPageSize {
		limit = 20
	}

	runs, err := h.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list runs: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": runs,
	})
}
