// Package api serves analysis runs and stored results over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

var (
	errBusy    = errors.New("an analysis run is already in progress")
	errTimeout = errors.New("analysis timed out")
)

// Service is the analysis backend the API exposes
type Service interface {
	Run(ctx context.Context, date string) (*model.AnalysisResults, error)
	Title(ctx context.Context, date string, titleNumber int) (*model.TitleReport, error)
	Latest(ctx context.Context) (*model.AnalysisResults, error)
	History(ctx context.Context, titleNumber int) ([]model.HistoricalChange, error)
}

// Server holds the HTTP handlers
type Server struct {
	service        Service
	logger         *log.Logger
	analyzeTimeout time.Duration

	// running serializes corpus runs; a second request gets 409 instead of queueing
	running sync.Mutex
}

// NewServer creates a server over service
func NewServer(service Service, logger *log.Logger, analyzeTimeout time.Duration) *Server {
	return &Server{
		service:        service,
		logger:         logger,
		analyzeTimeout: analyzeTimeout,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api/ecfr")
	{
		api.POST("/analyze", s.Analyze)
		api.GET("", s.GetLatest)
		api.GET("/titles/:number", s.GetTitle)
		api.GET("/history/:number", s.GetHistory)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody(CodeNotFound, "route not found"))
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	}
}
