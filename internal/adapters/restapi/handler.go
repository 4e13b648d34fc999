package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"acuity_offchain_worker/internal/core/domain"
	"acuity_offchain_worker/internal/logger"
	"acuity_offchain_worker/pkg/offchain"
)

// statusClientClosedRequest is recorded when the client disconnects before a response is written.
const statusClientClosedRequest = 499

// HTTPHandler handles incoming HTTP requests for the worker API.
type HTTPHandler struct {
	worker offchain.Worker
	logger logger.AppLogger
}

// NewHTTPHandler creates a new handler with the necessary service dependency.
func NewHTTPHandler(worker offchain.Worker, appLogger logger.AppLogger) (*HTTPHandler, error) {
	if worker == nil {
		return nil, errors.New("worker cannot be nil for HTTPHandler")
	}
	if appLogger == nil {
		return nil, errors.New("logger cannot be nil for HTTPHandler")
	}
	return &HTTPHandler{
		worker: worker,
		logger: appLogger,
	}, nil
}

// HandleRoot handles requests to GET /
func (h *HTTPHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	requestLogger := h.logger.With("method", r.Method, "path", r.URL.Path)

	payload, err := h.worker.Payload(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			requestLogger.Debug("Client went away before the payload was ready", "error", err)
			w.WriteHeader(statusClientClosedRequest)
			return
		}
		code, message := errorStatus(err)
		if code == http.StatusServiceUnavailable {
			requestLogger.Warn("Worker not ready", "error", err)
		} else {
			requestLogger.Error("Error computing payload", "error", err)
		}
		respondWithError(w, code, message, requestLogger)
		return
	}

	requestLogger.Debug("Payload served")
	respondWithJSON(w, http.StatusOK, payload, requestLogger)
}

// errorStatus maps worker errors to an HTTP status and a client-facing message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrChainNotReady):
		return http.StatusServiceUnavailable, domain.ErrChainNotReady.Error()
	case errors.Is(err, domain.ErrChainUnavailable):
		return http.StatusServiceUnavailable, domain.ErrChainUnavailable.Error()
	case errors.Is(err, domain.ErrQueryTimeout):
		return http.StatusGatewayTimeout, domain.ErrQueryTimeout.Error()
	default:
		return http.StatusBadGateway, "chain query failed"
	}
}

// respondWithError logs a warning and sends a JSON error response with the given code and message.
func respondWithError(w http.ResponseWriter, code int, message string, l logger.AppLogger) {
	l.Warn("Responding with error", "http_code", code, "message", message)
	respondWithJSON(w, code, ErrorResponse{Error: message}, l)
}

// respondWithJSON marshals the given payload into JSON and writes it to the response writer.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, l logger.AppLogger) {
	response, err := json.Marshal(payload)
	if err != nil {
		l.Error("!!! Critical: Error marshaling JSON response !!!",
			"error", err.Error(),
			"payload_type", fmt.Sprintf("%T", payload),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(code)

	n, writeErr := w.Write(response)
	if writeErr != nil {
		l.Error("Error writing response body", "error", writeErr, "bytes_written", n)
	}
}
