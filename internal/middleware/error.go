package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const (
	// MessageUnauthorized is the only body an unauthenticated caller sees
	MessageUnauthorized = "Unauthorized"
	// MessageInvalidRequest accompanies every validation failure
	MessageInvalidRequest = "Invalid request"
)

// ErrorResponse is the JSON body of every error
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details FieldErrors `json:"details,omitempty"`
}

// RespondWithError sends {"error": message}
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// RespondUnauthorized sends the fixed 401 body
func RespondUnauthorized(w http.ResponseWriter) {
	RespondWithError(w, http.StatusUnauthorized, MessageUnauthorized)
}

// RespondWithValidationErrors sends a 400 carrying field-level details
func RespondWithValidationErrors(w http.ResponseWriter, details FieldErrors) {
	RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   MessageInvalidRequest,
		Details: details,
	})
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
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
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
