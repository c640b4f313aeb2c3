package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/GregMSThompson/widget-dashboard/internal/errs"
	"github.com/GregMSThompson/widget-dashboard/pkg/logger"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeError(w, r, status, ErrorResponse{Code: code, Message: message})
}

func (h *responseHandler) writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Use context logger if encoding fails
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", body.Code)
	}
}

func setRetryAfter(w http.ResponseWriter, d time.Duration) {
	if d <= 0 {
		return
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.Seconds()))))
}

func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var (
		notFound   *errs.NotFoundError
		validation *errs.ValidationError
		config     *errs.ConfigurationError
		throttled  *errs.ThrottledError
		limited    *errs.RateLimitedError
		data       *errs.DataError
		transport  *errs.TransportError
		database   *errs.DatabaseError
		external   *errs.ExternalServiceError
		encryption *errs.EncryptionError
	)

	switch {
	case errors.As(err, &notFound):
		log.Warn("resource not found", "error", notFound.Message)
		h.WriteError(w, r, http.StatusNotFound, "not_found", notFound.Message)

	case errors.As(err, &validation):
		log.Warn("validation failed", "error", validation.Message)
		h.WriteError(w, r, http.StatusBadRequest, "invalid_input", validation.Message)

	case errors.As(err, &config):
		log.Warn("invalid widget configuration", "field", config.Field, "error", config.Message)
		h.writeError(w, r, http.StatusUnprocessableEntity, ErrorResponse{
			Code:    "invalid_configuration",
			Message: config.Message,
			Field:   config.Field,
		})

	case errors.As(err, &throttled):
		log.Info("widget fetch throttled", "key", throttled.Key, "retry_after", throttled.RetryAfter)
		setRetryAfter(w, throttled.RetryAfter)
		h.WriteError(w, r, http.StatusTooManyRequests, "rate_limited", throttled.Message)

	case errors.As(err, &limited):
		log.Info("plugin rate limited", "retry_after", limited.RetryAfter)
		setRetryAfter(w, limited.RetryAfter)
		h.WriteError(w, r, http.StatusTooManyRequests, "rate_limited", limited.Message)

	case errors.As(err, &data):
		log.Warn("plugin reported failure", "error", data.Message)
		h.WriteError(w, r, http.StatusBadGateway, "plugin_error", data.Message)

	case errors.As(err, &transport):
		if transport.StatusCode == http.StatusTooManyRequests {
			log.Info("plugin rate limited", "error", transport.Message)
			h.WriteError(w, r, http.StatusTooManyRequests, "rate_limited", transport.Message)
			return
		}
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		log.Warn("plugin transport error", "status_code", transport.StatusCode, "error", transport.Message)
		h.WriteError(w, r, status, "plugin_unavailable", transport.Message)

	case errors.As(err, &database):
		log.Error("database error",
			"operation", database.Operation,
			"error", database.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	case errors.As(err, &external):
		level := slog.LevelError
		if external.Transient {
			level = slog.LevelWarn
		}
		log.Log(r.Context(), level, "external service error",
			"service", external.Service,
			"transient", external.Transient,
			"error", external.Message)

		status := http.StatusBadGateway
		if external.Transient {
			status = http.StatusServiceUnavailable
		}
		h.WriteError(w, r, status, "service_unavailable",
			"Service temporarily unavailable")

	case errors.As(err, &encryption):
		log.Error("encryption error", "error", encryption.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An unexpected error occurred")
	}
}
