// Package server exposes the track pipeline over HTTP: submit a URL,
// poll the job's progress, list jobs, and clean finished records up.
package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tunegrab/internal/progress"
)

// jobTimeout caps a single job end to end so a stuck subprocess cannot
// hold its goroutine forever.
const jobTimeout = 45 * time.Minute

// trackRunner drives one submitted job to a terminal progress state.
type trackRunner interface {
	Run(ctx context.Context, jobID, url string) error
}

// Server handles HTTP requests for the track pipeline.
type Server struct {
	runner  trackRunner
	tracker *progress.Store
	router  *gin.Engine
}

// New creates the HTTP server around a shared runner and progress store.
func New(runner trackRunner, tracker *progress.Store) *Server {
	server := &Server{
		runner:  runner,
		tracker: tracker,
		router:  gin.Default(),
	}
	server.setupRoutes(server.router)
	return server
}

// setupRoutes configures the HTTP routes.
func (s *Server) setupRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.GET("/health", s.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/tracks", s.submitTrack)
		api.GET("/tracks", s.listTracks)
		api.GET("/tracks/:id/progress", s.getTrackProgress)
		api.DELETE("/tracks/:id/progress", s.deleteTrackProgress)
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// healthCheck handles health check requests
//
//	@Summary		Health check
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "tunegrab",
	})
}
