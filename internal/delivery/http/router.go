package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "tradehook/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	WebhookHandler  *WebhookHandler
	APIHandler      *APIHandler
	SettingsHandler *SettingsHandler
	AuthHandler     *AuthHandler
	WebHandler      *WebHandler
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging for polling endpoints to reduce noise
			path := c.Request().URL.Path
			return path == "/health" || path == "/api/positions" || path == "/api/test-connection"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":  "healthy",
			"service": "tradehook",
		})
	})

	// Signal ingestion (public: the charting service cannot log in)
	e.POST("/webhook", config.WebhookHandler.Handle)

	// API group
	api := e.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/login", config.AuthHandler.Login)
		auth.POST("/logout", config.AuthHandler.Logout)
	}

	// Read API (protected)
	protected := api.Group("", custommiddleware.AuthMiddleware)
	{
		protected.GET("/trades", config.APIHandler.GetTrades)
		protected.GET("/positions", config.APIHandler.GetPositions)
		protected.GET("/balance", config.APIHandler.GetBalance)
		protected.GET("/test-connection", config.APIHandler.TestConnection)
		protected.GET("/analytics", config.APIHandler.GetAnalytics)
		protected.GET("/settings", config.SettingsHandler.Get)
		protected.POST("/settings", config.SettingsHandler.Update)
	}

	// Web pages
	RegisterWebRoutes(e, config.WebHandler, custommiddleware.WebAuthMiddleware)
}
