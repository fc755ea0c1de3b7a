package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/akolanti/PolicyRAG/internal/adapter"
	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/ragErrors"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

var logRH = logger_i.NewLogger("ResponseWriter")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, traceId string, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(traceId, message, httpCode))
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	trace := traceId(r.Context())
	log := h.logger.WithTrace(r.Context(), config.TRACE_ID_KEY)

	switch {
	case errors.Is(err, ragErrors.ErrInvalidInput):
		WriteErrorResponse(w, http.StatusBadRequest, trace, err.Error())
	case errors.Is(err, ragErrors.ErrNotFound):
		WriteErrorResponse(w, http.StatusNotFound, trace, err.Error())
	case errors.Is(err, ragErrors.ErrNotReady):
		log.Warn("Service not ready", "error", err)
		WriteErrorResponse(w, http.StatusFailedDependency, trace, "Chat service is not ready: "+err.Error())
	default:
		log.Error(action, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, trace, action+": "+err.Error())
	}
}

func traceId(ctx context.Context) string {
	if v, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		return v
	}
	return ""
}

func (h *Handler) validateContext(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		h.logger.WithTrace(ctx, config.TRACE_ID_KEY).Warn("context error", "error", err)
		return false
	}
	return true
}

func (h *Handler) getTargetDirectory() (string, string) {
	if err := os.MkdirAll(h.uploadDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return h.uploadDir, ""
}
