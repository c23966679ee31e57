package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"rental/internal/handler"
	"rental/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	VehicleHandler   *handler.VehicleHandler
	SessionHandler   *handler.SessionHandler
	IdempotencyStore middleware.ResponseStore
	NewRelicApp      *newrelic.Application
	AllowedOrigins   []string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.IdempotencyStore))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Vehicle catalog routes.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", deps.VehicleHandler.List)
			vehicles.GET("/:id", deps.VehicleHandler.Get)
			vehicles.GET("/:id/availability", deps.VehicleHandler.Availability)
		}

		// Booking session routes.
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", deps.SessionHandler.Create)
			sessions.GET("/:id", deps.SessionHandler.Get)
			sessions.POST("/:id/vehicle", deps.SessionHandler.SelectVehicle)
			sessions.POST("/:id/details", deps.SessionHandler.SubmitDetails)
			sessions.POST("/:id/payment", deps.SessionHandler.ChoosePayment)
			sessions.POST("/:id/confirm", deps.SessionHandler.Confirm)
			sessions.POST("/:id/reset", deps.SessionHandler.Reset)
			sessions.GET("/:id/confirmation/receipt", deps.SessionHandler.Receipt)
		}
	}

	return router
}
