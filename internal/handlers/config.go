package handlers

import (
	"errors"
	"net/http"

	"autopost/internal/models"
	"autopost/internal/service"

	"github.com/gin-gonic/gin"
)

// ConfigRequest is an exported model for Swagger docs of the update payload.
type ConfigRequest struct {
	// Wall-clock posting times, "HH:MM"
	FixedTimes []string `json:"fixed_times" example:"09:00,18:00"`
	// Active weekdays, 0=Sunday .. 6=Saturday
	ActiveDays []int `json:"active_days"`
	// Random offset bound in minutes
	JitterMinutes int  `json:"jitter_minutes" example:"15"`
	PostToX       bool `json:"post_to_x" example:"true"`
	PostToThreads bool `json:"post_to_threads" example:"false"`
	// Relative weights for content types A/B/C
	TypeRatios models.TypeRatios `json:"type_ratios"`
	// Persona passed to the content generator
	Persona string `json:"persona,omitempty"`
}

// @Summary      Get schedule config
// @Tags         config
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/config [get]
// @Security     BearerAuth
func (h *Handler) getConfig(c *gin.Context) {
	ctx := c.Request.Context()
	cfg, err := h.services.Settings.Get(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load config", "config_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// @Summary      Update schedule config
// @Description  Validates and saves the schedule. The running scheduler picks the change up on its next cycle.
// @Tags         config
// @Accept       json
// @Produce      json
// @Param        body  body   ConfigRequest  true  "Schedule config"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/config [put]
// @Security     BearerAuth
func (h *Handler) updateConfig(c *gin.Context) {
	var req models.ScheduleConfig
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	ctx := c.Request.Context()
	cfg, err := h.services.Settings.Update(ctx, req)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to save config", "config_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func isValidationError(err error) bool {
	return errors.Is(err, service.ErrInvalidSlotTime) ||
		errors.Is(err, service.ErrInvalidDay) ||
		errors.Is(err, service.ErrNegativeJitter) ||
		errors.Is(err, service.ErrNegativeRatio)
}
