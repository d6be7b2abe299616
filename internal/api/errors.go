package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
	"github.com/ppiankov/ecfr-analyzer/internal/store"
)

// Error codes returned in the "error.code" field
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeTitleNotFound      = "TITLE_NOT_FOUND"
	CodeUpstream           = "UPSTREAM_FETCH_FAILED"
	CodePersistence        = "PERSISTENCE_ERROR"
	CodeAnalysisInProgress = "ANALYSIS_IN_PROGRESS"
	CodeTimeout            = "TIMEOUT"
	CodeInternal           = "INTERNAL_ERROR"
)

// classify maps a domain error to an HTTP status and error code
func classify(err error) (int, string) {
	var (
		validationErr  *model.ValidationError
		notFoundErr    *model.TitleNotFoundError
		fetchErr       *model.FetchError
		persistenceErr *model.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, CodeValidation
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, CodeTitleNotFound
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, CodeUpstream
	case errors.As(err, &persistenceErr):
		return http.StatusInternalServerError, CodePersistence
	case errors.Is(err, errBusy):
		return http.StatusConflict, CodeAnalysisInProgress
	case errors.Is(err, errTimeout):
		return http.StatusGatewayTimeout, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// errorBody builds the error envelope
func errorBody(code, message string) gin.H {
	return gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// respondError writes err as an error envelope with the mapped status
func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError && code == CodeInternal {
		message = "Internal server error"
	}
	c.JSON(status, errorBody(code, message))
}
