package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"logistock/internal/domain"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Status  int                    `json:"status"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// kindStatus maps business error kinds to HTTP status codes
var kindStatus = map[domain.ErrorKind]int{
	domain.KindAlreadyRegistered: http.StatusBadRequest,
	domain.KindNotFound:          http.StatusNotFound,
	domain.KindStockExceeded:     http.StatusBadRequest,
	domain.KindStockUnderflow:    http.StatusBadRequest,
	domain.KindInvalidQuantity:   http.StatusBadRequest,
}

const internalErrorMessage = "internal server error"

// RespondWithError sends an error response with the given status
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithErrorDetails(w, statusCode, message, nil)
}

// RespondWithErrorDetails sends an error response with additional details
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	RespondWithJSON(w, statusCode, ErrorResponse{
		Status:  statusCode,
		Message: message,
		Details: details,
	})
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, validationErrors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = validationErrors

	RespondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
}

// StatusForError returns the HTTP status for err. Anything that is not a
// business error is a 500.
func StatusForError(err error) int {
	if kind, ok := domain.KindOf(err); ok {
		if status, ok := kindStatus[kind]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// RespondWithDomainError translates a service error into a response. Unexpected
// errors are logged and reported with a generic message.
func RespondWithDomainError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		RespondWithError(w, status, internalErrorMessage)
		return
	}

	var derr *domain.Error
	if !errors.As(err, &derr) {
		RespondWithError(w, status, http.StatusText(status))
		return
	}
	RespondWithError(w, status, derr.Message)
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
						zap.Stack("stack"),
					)

					RespondWithError(w, http.StatusInternalServerError, internalErrorMessage)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
