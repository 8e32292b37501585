// Package api exposes the JSON routes over the store and the
// ingestion service.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"studymap/internal/ingest"
	"studymap/internal/store"
)

const requestIDHeader = "X-Request-ID"

// Server holds the handler dependencies.
type Server struct {
	store *store.Store
	svc   *ingest.Service
	log   *zap.Logger
}

// NewServer wires the routes to the store and ingestion service.
func NewServer(st *store.Store, svc *ingest.Service, log *zap.Logger) *Server {
	return &Server{store: st, svc: svc, log: log}
}

// Router builds the gin engine with logging, recovery and CORS.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(s.log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		api.POST("/entries", s.handleIngest)
		api.GET("/entries", s.handleListEntries)
		api.GET("/entry/:id", s.handleGetEntry)
		api.POST("/entry/:id/enhance", s.handleEnhanceEntry)
		api.GET("/topics", s.handleListTopics)
		api.GET("/skills", s.handleListSkills)
		api.GET("/connections", s.handleListConnections)
		api.GET("/blindspots", s.handleListBlindspots)
		api.GET("/stats", s.handleStats)
		api.GET("/graph-data", s.handleGraphData)
		api.GET("/analytics-data", s.handleAnalyticsData)
	}

	return router
}

// requestID tags every request with an id, honoring one supplied by
// the caller.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}
