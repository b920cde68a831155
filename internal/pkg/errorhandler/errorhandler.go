package errorhandler

import (
	"context"
	"net/http"

	"github.com/mwork/experience-api/internal/pkg/logger"
	"github.com/mwork/experience-api/internal/pkg/response"
	"github.com/mwork/experience-api/internal/pkg/validator"
)

// HandleError logs err with the request-scoped logger and sends a
// formatted error response. Client errors log at warn, the rest at error.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	l := logger.FromContext(ctx)

	event := l.Error()
	if status < http.StatusInternalServerError {
		event = l.Warn()
	}

	event.
		Str("error_code", code).
		Str("error_message", message).
		Int("status_code", status).
		Err(err).
		Msg("Request error")

	response.Error(w, status, code, message)
}

// HandleValidationError logs the rejected fields and sends a 422 response
func HandleValidationError(ctx context.Context, w http.ResponseWriter, fields []validator.FieldError) {
	LogValidationError(ctx, fields)
	response.ValidationError(w, fields)
}

// HandlePanicError logs a recovered panic with its stack trace
func HandlePanicError(ctx context.Context, w http.ResponseWriter, r *http.Request, panicErr interface{}, stackTrace string) {
	logger.FromContext(ctx).Error().
		Interface("panic_error", panicErr).
		Str("panic_stack", stackTrace).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Request panic error")

	response.InternalError(w)
}

// LogValidationError logs validation errors with details
func LogValidationError(ctx context.Context, fields []validator.FieldError) {
	logger.FromContext(ctx).Warn().
		Interface("validation_errors", fields).
		Int("count", len(fields)).
		Msg("Validation error")
}
