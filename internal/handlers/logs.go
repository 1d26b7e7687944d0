package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const errCountInvalid = "invalid 'count'; must be a positive integer"

// @Summary      List recent log entries
// @Description  Returns the newest execution-log entries, most recent first.
// @Tags         logs
// @Produce      json
// @Param        count  query   int  false  "Number of entries (default 50, max 500)"  example(20)
// @Success      200    {object}  map[string]interface{}  "count, entries"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	ctx := c.Request.Context()

	count := 0
	if qs := c.Query("count"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errCountInvalid})
			return
		}
		count = v
	}

	entries, err := h.services.ExecutionLog.Recent(ctx, count)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load logs", "logs_list_failed", err, "count", count)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(entries),
		"entries": entries,
	})
}
