package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studymap/internal/analytics"
	"studymap/internal/graph"
	apperrors "studymap/pkg/errors"
)

// entryID parses the :id path segment. Non-numeric ids read as a
// missing resource, matching the integer route converter the clients
// were written against.
func entryID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return 0, false
	}
	return id, true
}

func (s *Server) handleIngest(c *gin.Context) {
	var req struct {
		Topic   string   `json:"topic" binding:"required"`
		Skills  []string `json:"skills" binding:"required"`
		Summary string   `json:"summary" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	topic := strings.TrimSpace(req.Topic)
	summary := strings.TrimSpace(req.Summary)
	skills := make([]string, 0, len(req.Skills))
	for _, sk := range req.Skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			skills = append(skills, sk)
		}
	}
	if topic == "" || summary == "" || len(skills) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all three fields."})
		return
	}

	res, err := s.svc.Ingest(c.Request.Context(), topic, skills, summary)
	if err != nil {
		s.log.Error("Failed to ingest entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save entry"})
		return
	}

	payload := gin.H{"entry_id": res.EntryID}
	if res.AnnotationErr != nil {
		payload["annotation_error"] = "AI classification failed: " + res.AnnotationErr.Error()
	} else {
		payload["classification"] = res.Classification
		payload["connections"] = res.Connections
		payload["blindspots"] = res.Blindspots
		payload["enhanced_summary"] = res.EnhancedSummary
	}
	c.JSON(http.StatusCreated, payload)
}

func (s *Server) handleListEntries(c *gin.Context) {
	entries, err := s.store.ListEntries(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to list entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleGetEntry(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}

	entry, err := s.store.GetEntry(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		s.log.Error("Failed to fetch entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch entry"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleEnhanceEntry(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}

	enhanced, err := s.svc.EnhanceEntry(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		s.log.Error("Failed to enhance entry", zap.Int64("entry_id", id), zap.Error(err))
		status := http.StatusInternalServerError
		if apperrors.IsErrorType(err, apperrors.ErrorTypeBackend) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": "Enhancement failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enhanced_summary": enhanced})
}

func (s *Server) handleListTopics(c *gin.Context) {
	topics, err := s.store.ListTopics(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to list topics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list topics"})
		return
	}
	c.JSON(http.StatusOK, topics)
}

func (s *Server) handleListSkills(c *gin.Context) {
	skills, err := s.store.ListSkills(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to list skills", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list skills"})
		return
	}
	c.JSON(http.StatusOK, skills)
}

func (s *Server) handleListConnections(c *gin.Context) {
	conns, err := s.store.ListConnections(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to list connections", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list connections"})
		return
	}
	c.JSON(http.StatusOK, conns)
}

func (s *Server) handleListBlindspots(c *gin.Context) {
	spots, err := s.store.ListBlindspots(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to list blindspots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list blindspots"})
		return
	}
	c.JSON(http.StatusOK, spots)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to compute stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleGraphData(c *gin.Context) {
	ctx := c.Request.Context()

	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		s.log.Error("Failed to list entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build graph"})
		return
	}
	conns, err := s.store.ListConnections(ctx)
	if err != nil {
		s.log.Error("Failed to list connections", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build graph"})
		return
	}

	nodes, edges := graph.Build(entries, conns)
	c.JSON(http.StatusOK, gin.H{"nodes": nodes, "edges": edges})
}

func (s *Server) handleAnalyticsData(c *gin.Context) {
	entries, err := s.store.ListEntries(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to list entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build analytics"})
		return
	}
	c.JSON(http.StatusOK, analytics.Build(entries))
}
