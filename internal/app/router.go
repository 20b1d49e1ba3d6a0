package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"ligo/internal/handler"
	"ligo/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AccountHandler *handler.AccountHandler
	VehicleHandler *handler.VehicleHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v0 routes, one group per telematics provider.
	v0 := router.Group("/api/v0")
	{
		provider := v0.Group("/:provider")
		{
			provider.POST("/authorize", deps.AccountHandler.Authorize)
			provider.GET("/users/:id/vehicles", deps.VehicleHandler.Vehicles)
			provider.GET("/users/:id/vehicles/:vehicleId/odometer", deps.VehicleHandler.Odometer)
			provider.GET("/users/:id/vehicles/:vehicleId/location", deps.VehicleHandler.Location)
		}
	}

	return router
}
