package handlers

import (
	"errors"
	"net/http"

	"autopost/internal/models"
	"autopost/internal/service"

	"github.com/gin-gonic/gin"
)

// GenerateRequest is an exported model for Swagger docs of the generate payload.
type GenerateRequest struct {
	// Content type to generate. Allowed: A (trend-linked), B (standalone), C (promotion)
	ContentType string `json:"content_type" example:"A"`
}

// PublishRequest is an exported model for Swagger docs of the publish payload.
type PublishRequest struct {
	// Text to post as-is
	Text string `json:"text" example:"hello from the dashboard"`
	// Optional image URL (Threads only)
	ImageURL      string `json:"image_url,omitempty"`
	PostToX       bool   `json:"post_to_x" example:"true"`
	PostToThreads bool   `json:"post_to_threads" example:"false"`
}

// @Summary      Generate a draft post
// @Description  Produces one draft of the requested content type without publishing.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        body  body   GenerateRequest  true  "Generate payload"
// @Success      200   {object}  map[string]string  "text"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/posts/generate [post]
// @Security     BearerAuth
func (h *Handler) generatePost(c *gin.Context) {
	var req service.ComposeParams
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	ctx := c.Request.Context()
	text, err := h.services.Composer.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownContentType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusBadGateway, "content generation failed", "post_generate_failed", err, "content_type", req.ContentType)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content_type": req.ContentType,
		"text":         text,
	})
}

// @Summary      Publish text now
// @Description  Posts caller-supplied text immediately to the selected platforms and records the outcome in the execution log.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        body  body   PublishRequest  true  "Publish payload"
// @Success      200   {object}  models.DispatchResult
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/posts/publish [post]
// @Security     BearerAuth
func (h *Handler) publishPost(c *gin.Context) {
	var req service.PublishParams
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	ctx := c.Request.Context()
	result, err := h.services.Composer.Publish(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to publish", "post_publish_failed", err)
		return
	}
	status := http.StatusOK
	if result.Classification == models.FiringFailed {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}
