package httpapi

import (
	"errors"
	"net/http"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"go.uber.org/zap"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrIntegration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes the failure envelope. 500s get a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, op string, err error) {
	status := statusFor(err)
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", fields...)
	} else {
		logger.Warn(op+" failed", fields...)
	}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, status, FailWith("validation failed", verr.Fields))
	case status == http.StatusInternalServerError:
		writeJSON(w, status, Fail("internal server error"))
	default:
		writeJSON(w, status, Fail(err.Error()))
	}
}
