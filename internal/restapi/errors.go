package restapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"paradas.buscoruna.org/internal/logging"
	"paradas.buscoruna.org/internal/models"
	"paradas.buscoruna.org/internal/upstream"
)

// Error details returned to clients.
const (
	detailStopNotFound     = "stop_not_found"
	detailNotFound         = "not_found"
	detailMethodNotAllowed = "method_not_allowed"
	detailUnavailable      = "transit_api_unavailable"
	detailInternal         = "internal_error"
	detailRateLimited      = "rate_limit_exceeded"
)

func (api *RestAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, detail any) {
	api.writeJSON(w, r, status, models.ErrorResponse{Detail: detail, Code: status})
}

func (api *RestAPI) logClientError(r *http.Request, msg string, status int) {
	logging.LogWarning(logging.FromContext(r.Context()), msg,
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status))
}

func (api *RestAPI) stopNotFoundResponse(w http.ResponseWriter, r *http.Request) {
	api.logClientError(r, "stop not found", http.StatusNotFound)
	api.errorResponse(w, r, http.StatusNotFound, detailStopNotFound)
}

func (api *RestAPI) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	api.errorResponse(w, r, http.StatusNotFound, detailNotFound)
}

func (api *RestAPI) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	api.errorResponse(w, r, http.StatusMethodNotAllowed, detailMethodNotAllowed)
}

// validationErrorResponse sends a 422 response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	api.logClientError(r, "validation failed", http.StatusUnprocessableEntity)
	api.errorResponse(w, r, http.StatusUnprocessableEntity, fieldErrors)
}

// upstreamErrorResponse maps transit API failures to 502 and anything else to 500.
func (api *RestAPI) upstreamErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, upstream.ErrUnavailable) {
		api.serverErrorResponse(w, r, err)
		return
	}
	logging.LogError(logging.FromContext(r.Context()), "transit api unavailable", err,
		slog.String("path", r.URL.Path))
	api.errorResponse(w, r, http.StatusBadGateway, detailUnavailable)
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "unhandled error", err,
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", http.StatusInternalServerError))
	api.errorResponse(w, r, http.StatusInternalServerError, detailInternal)
}

func (api *RestAPI) panicResponse(w http.ResponseWriter, r *http.Request, rec any) {
	api.serverErrorResponse(w, r, fmt.Errorf("panic: %v", rec))
}
