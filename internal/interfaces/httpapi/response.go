package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/football-sync/internal/usecase"
)

const unauthorizedMessage = "Unauthorized: Invalid or missing X-Auth-Token header"

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type mappedError struct {
	HTTPStatus int
	// Public replaces err.Error() in the body when set.
	Public string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, dataResponse{Success: true, Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	message := mapped.Public
	if message == "" {
		message = err.Error()
	}
	writeJSON(ctx, w, mapped.HTTPStatus, errorResponse{Success: false, Error: message})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Success: false, Error: "internal server error"})
}

func mapError(ctx context.Context, err error) mappedError {
	ctx, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	var fetchErr *usecase.FetchFailedError
	switch {
	case errors.As(err, &fetchErr):
		// An upstream failure that aborted a run, including an open circuit.
		return mappedError{HTTPStatus: http.StatusInternalServerError}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{HTTPStatus: http.StatusUnauthorized, Public: unauthorizedMessage}
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound}
	case errors.Is(err, usecase.ErrSyncInProgress):
		return mappedError{HTTPStatus: http.StatusConflict}
	case errors.Is(err, usecase.ErrMisconfigured):
		return mappedError{HTTPStatus: http.StatusInternalServerError}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError}
	}
}
