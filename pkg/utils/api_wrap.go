package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Class   string      `json:"error_class,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

func respondClassified(c *gin.Context, code int, message string, err error) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Class:   ErrorClass(err),
		TraceID: c.GetString("trace_id"),
	})
}

// HandleServiceError maps service errors onto HTTP responses. The error class
// is included so callers can branch without parsing the message.
func HandleServiceError(c *gin.Context, err error) {
	var cfgErr *ConfigurationError
	var finderErr *FinderError
	var apiErr *PlacesAPIError

	switch {
	case errors.As(err, &cfgErr):
		respondClassified(c, http.StatusServiceUnavailable, "API key missing", err)
	case errors.As(err, &finderErr) && finderErr.Kind == KindNoLocation:
		respondClassified(c, http.StatusBadGateway, "location not detected", err)
	case errors.As(err, &apiErr):
		respondClassified(c, http.StatusBadGateway, "provider error: "+apiErr.Code, err)
	case errors.Is(err, ErrInvalidRadius), errors.Is(err, ErrInvalidMaxResults):
		respondClassified(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, ErrInvalidPage):
		RespondError(c, http.StatusBadRequest, "Page must be greater than 0")
	case errors.Is(err, ErrInvalidPageSize):
		RespondError(c, http.StatusBadRequest, "Page size must be between 1 and 100")
	case errors.Is(err, ErrLookupNotFound):
		RespondError(c, http.StatusNotFound, "Lookup not found")
	case errors.Is(err, ErrAuditDisabled):
		RespondError(c, http.StatusServiceUnavailable, "Lookup audit log is disabled")
	case errors.Is(err, ErrDatabaseError):
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
