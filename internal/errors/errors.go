package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-user-api/internal/services"
)

// Error codes
const (
	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Store errors
	ErrCodeOperationFailed = "OPERATION_FAILED"
	ErrCodeWriteConflict   = "WRITE_CONFLICT"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError represents a standardized API error response. It keeps the
// {message, data} envelope of successful responses.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

// Helper functions for common error responses

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, message, details))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, NewAPIErrorWithDetails(ErrCodeConflict, message, details))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}

// Respond maps a service error onto its HTTP status and envelope
func Respond(c *gin.Context, log logrus.FieldLogger, err error) {
	var (
		validationErr  *services.ValidationError
		notFoundErr    *services.NotFoundError
		conflictErr    *services.ConflictError
		transactionErr *services.TransactionError
	)

	switch {
	case stderrors.As(err, &validationErr):
		BadRequestWithDetails(c, validationErr.Error(), validationErr.Fields)
	case stderrors.As(err, &notFoundErr):
		NotFound(c, notFoundErr.Error())
	case stderrors.As(err, &conflictErr):
		Conflict(c, conflictErr.Message, conflictErr.IDs)
	case stderrors.As(err, &transactionErr):
		switch transactionErr.Kind {
		case services.KindData:
			RespondWithError(c, http.StatusBadRequest,
				NewAPIError(ErrCodeOperationFailed, transactionErr.Err.Error()))
		case services.KindRetryable:
			log.WithError(err).Warn("Transaction aborted by a concurrent write")
			RespondWithError(c, http.StatusInternalServerError,
				NewAPIError(ErrCodeWriteConflict, "Write conflict, retry the request"))
		default:
			log.WithError(err).Error("Transaction failed")
			InternalError(c, "")
		}
	default:
		log.WithError(err).Error("Unexpected error")
		InternalError(c, "")
	}
}
