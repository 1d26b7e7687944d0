package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusStarted = "started"
	statusStopped = "stopped"

	errStartScheduler = "failed to start scheduler"
	errStopScheduler  = "failed to stop scheduler"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include the current runner status.
func (h *Handler) respondWithStatus(c *gin.Context, status string) {
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"runner": h.services.Scheduler.Status(c.Request.Context()),
	})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start scheduler
// @Description  Idempotent: starting a running scheduler is a no-op.
// @Tags         scheduler
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, runner"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/scheduler/start [post]
// @Security     BearerAuth
func (h *Handler) startScheduler(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Scheduler.Start(ctx); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStartScheduler, "scheduler_start_failed", err)
		return
	}
	h.respondWithStatus(c, statusStarted)
}

// @Summary      Stop scheduler
// @Description  Idempotent. An in-flight dispatch is allowed to finish.
// @Tags         scheduler
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/scheduler/stop [post]
// @Security     BearerAuth
func (h *Handler) stopScheduler(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Scheduler.Stop(ctx); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStopScheduler, "scheduler_stop_failed", err)
		return
	}
	h.respondWithStatus(c, statusStopped)
}

// @Summary      Get scheduler status
// @Tags         scheduler
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/scheduler/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Scheduler.Status(c.Request.Context()))
}
