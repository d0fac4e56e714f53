package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/wishgrab/api/handler"
	"github.com/use-agent/wishgrab/api/middleware"
	"github.com/use-agent/wishgrab/config"
	"github.com/use-agent/wishgrab/scraper"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (no-op when disabled) → RateLimit (per caller)
//
// Health stays outside auth so monitoring probes always work.
func NewRouter(sc *scraper.Scraper, transports []string, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(transports, startTime))

	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.Auth), middleware.RateLimit(cfg.RateLimit))

	protected.POST("/scrape", handler.Scrape(sc))
	protected.POST("/parse", handler.Parse(sc))

	protected.POST("/batch/scrape", handler.PostBatch(sc, cfg.Batch))
	protected.GET("/batch/:id", handler.GetBatch())

	return r
}
