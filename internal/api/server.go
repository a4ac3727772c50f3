// Package api exposes the decision pipeline over HTTP for operational
// use.
package api

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"foodflow/internal/pipeline"
	"foodflow/internal/usage"
)

// Server is the HTTP front of the pipeline. Runs are serialized: the
// inventory store must not see two concurrent runs.
type Server struct {
	Router   *gin.Engine
	pipeline *pipeline.Pipeline
	ledger   *usage.Ledger

	mu     sync.Mutex
	latest *pipeline.Result
}

// NewServer creates the API server and registers its routes
func NewServer(p *pipeline.Pipeline, ledger *usage.Ledger) *Server {
	s := &Server{
		Router:   gin.Default(),
		pipeline: p,
		ledger:   ledger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "FoodFlow API is running"})
	})

	v1 := s.Router.Group("/api/v1")
	{
		v1.POST("/runs", s.TriggerRun)
		v1.GET("/runs/latest", s.LatestRun)
		v1.GET("/usage", s.UsageReport)
	}
}

// runRequest optionally pins the randomness seed so a run can be
// reproduced
type runRequest struct {
	Seed *int64 `json:"seed"`
}

// TriggerRun executes one decision run and returns its result
func (s *Server) TriggerRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.pipeline.Run(c.Request.Context(), rand.New(rand.NewSource(seed)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.latest = result
	c.JSON(http.StatusCreated, result)
}

// LatestRun returns the most recent run result
func (s *Server) LatestRun(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no runs yet"})
		return
	}
	c.JSON(http.StatusOK, s.latest)
}

// UsageReport returns the process-lifetime token usage and cost estimate
func (s *Server) UsageReport(c *gin.Context) {
	c.JSON(http.StatusOK, s.ledger.Report())
}
