package handlers

import (
	"autopost/internal/logger"
	"autopost/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// WebSocket status stream (HTTP upgrade), same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerSchedulerRoutes(api)
		h.registerLogRoutes(api)
		h.registerConfigRoutes(api)
		h.registerPostRoutes(api)
	}
}

func (h *Handler) registerSchedulerRoutes(api *gin.RouterGroup) {
	scheduler := api.Group("/scheduler")
	{
		scheduler.POST("/start", h.startScheduler)
		scheduler.POST("/stop", h.stopScheduler)
		scheduler.GET("/status", h.getStatus)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}

func (h *Handler) registerConfigRoutes(api *gin.RouterGroup) {
	config := api.Group("/config")
	{
		config.GET("/", h.getConfig)
		config.PUT("/", h.updateConfig)
	}
}

func (h *Handler) registerPostRoutes(api *gin.RouterGroup) {
	posts := api.Group("/posts")
	{
		// Body example: {"content_type":"A"}
		posts.POST("/generate", h.generatePost)
		// Body example: {"text":"hello","post_to_x":true}
		posts.POST("/publish", h.publishPost)
	}
}
