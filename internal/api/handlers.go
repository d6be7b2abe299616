package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
	"github.com/ppiankov/ecfr-analyzer/internal/validate"
)

// AnalyzeRequest represents the request body for a corpus run
type AnalyzeRequest struct {
	Date string `json:"date"`
}

// Analyze handles POST /api/ecfr/analyze
func (s *Server) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidRequest, "request body must be JSON: {\"date\": \"YYYY-MM-DD\"}"))
		return
	}

	date, err := validate.NormalizeDate(req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	if !s.running.TryLock() {
		respondError(c, errBusy)
		return
	}
	defer s.running.Unlock()

	ctx := c.Request.Context()
	if s.analyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.analyzeTimeout)
		defer cancel()
	}

	results, err := s.service.Run(ctx, date)
	if err != nil {
		s.logger.Error("analysis failed", "date", date, "err", err)

		// The run completed and only storing it failed, even if the deadline hit during the save
		var persistenceErr *model.PersistenceError
		if results != nil && errors.As(err, &persistenceErr) {
			body := errorBody(CodePersistence, err.Error())
			body["data"] = results
			c.JSON(http.StatusInternalServerError, body)
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = errTimeout
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
	})
}

// GetLatest handles GET /api/ecfr
func (s *Server) GetLatest(c *gin.Context) {
	results, err := s.service.Latest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
	})
}

// GetTitle handles GET /api/ecfr/titles/:number?date=YYYY-MM-DD.
// The date defaults to today (UTC).
func (s *Server) GetTitle(c *gin.Context) {
	number, err := validate.ParseTitleNumber(c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	date := c.DefaultQuery("date", time.Now().UTC().Format(validate.DateLayout))

	report, err := s.service.Title(c.Request.Context(), date, number)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// GetHistory handles GET /api/ecfr/history/:number
func (s *Server) GetHistory(c *gin.Context) {
	number, err := validate.ParseTitleNumber(c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	series, err := s.service.History(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}
	if series == nil {
		series = []model.HistoricalChange{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    series,
	})
}
