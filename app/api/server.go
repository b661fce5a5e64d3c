// Package api serves the read-only catalog over HTTP: category listings,
// paginated browsing, search, random picks and a health check. All writes go
// through the crawl and sweep commands, never through this surface.
package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, version string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, version)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, version string) {
	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	{
		api.GET("/categories", handler.ListCategories)
		api.GET("/categories/:id/books", handler.GetCategoryBooks)
		api.GET("/books/count", handler.GetBookCount)
		api.GET("/books/random", handler.GetRandomBooks)
		api.GET("/books/search", handler.SearchBooks)
		api.GET("/books/:id", handler.GetBook)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "audiodex",
			"version":     version,
			"description": "Audiobook catalog built from crawled and cross-referenced sources",
			"endpoints": map[string]string{
				"categories":     "/api/categories",
				"category_books": "/api/categories/<id>/books",
				"book":           "/api/books/<id>",
				"search":         "/api/books/search?q=<query>",
				"random":         "/api/books/random",
				"count":          "/api/books/count",
				"health":         "/health",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
