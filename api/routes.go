package api

import (
	"net/http"

	"github.com/RyanRana/reallycheapflightfinderbro/config"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/buildinfo"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/cache"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/deals"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/health"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/macros"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, orchestrator *deals.Orchestrator, healthChecker *health.HealthChecker, cacheManager *cache.CacheManager, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health endpoints
	router.GET("/health", func(c *gin.Context) {
		report := healthChecker.CheckHealth(c.Request.Context())
		status := http.StatusOK
		if report.Status == health.StatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	})

	router.GET("/health/ready", func(c *gin.Context) {
		report := healthChecker.CheckReadiness(c.Request.Context())
		status := http.StatusOK
		if report.Status == health.StatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	})

	router.GET("/health/live", func(c *gin.Context) {
		report := healthChecker.CheckLiveness(c.Request.Context())
		c.JSON(http.StatusOK, report)
	})

	router.GET("/version", func(c *gin.Context) {
		info := buildinfo.Info()
		c.JSON(http.StatusOK, gin.H{
			"version":                    info["version"],
			"commit":                     info["commit"],
			"date":                       info["date"],
			"recognized_budget_carriers": macros.BudgetCarrierNames(),
		})
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/search", SearchDeals(orchestrator))
		v1.GET("/search", middleware.ResponseCache(cacheManager, middleware.CacheConfig{
			TTL:       cfg.CacheConfig.TTL,
			KeyPrefix: "http",
		}), SearchDealsGET(orchestrator))

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuth(cfg.AdminAuthConfig))
		{
			admin.POST("/cache/clear", ClearCache(cacheManager))
		}
	}
}
