package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/officercg/rockcrest-inventory-api/internal/api/handlers"
	"github.com/officercg/rockcrest-inventory-api/internal/api/middleware"
	"github.com/officercg/rockcrest-inventory-api/internal/config"
	"github.com/officercg/rockcrest-inventory-api/internal/shopify"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, client *shopify.Client, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(middleware.RequestID())
	router.Use(loggingMiddleware(logger))
	router.Use(cors.New(corsConfig(cfg.CORS)))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Rockcrest Inventory API",
			"endpoints": []string{
				"GET /health",
				"GET /inventory",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/inventory", handlers.HandleGetInventory(cfg, client, logger))

	return router
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	out := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Cache-Control"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		out.AllowAllOrigins = true
	} else {
		out.AllowOrigins = cfg.AllowedOrigins
	}
	return out
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": fmt.Sprintf("internal server error: %v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
	}
}
