package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"skillboard/internal/analysis"
	"skillboard/internal/models"
	"skillboard/internal/service"

	"github.com/go-playground/validator/v10"
)

var (
	errRateLimited = errors.New("too many assistant requests, slow down")
	errBadRequest  = errors.New("invalid request body")
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var rce *service.RemoteCallError
	var verrs validator.ValidationErrors

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, analysis.ErrDataNotFound), errors.Is(err, analysis.ErrInvalidTable):
		return http.StatusServiceUnavailable
	case errors.As(err, &rce):
		return http.StatusBadGateway
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, service.ErrUnknownColumn),
		errors.Is(err, models.ErrUnknownPage),
		errors.Is(err, errBadRequest),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes before writing the header so an encoding failure is still a 500
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		json.NewEncoder(&buf).Encode(models.ErrorResponse{Error: "failed to encode response: " + err.Error()})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, err error) {
	resp := models.ErrorResponse{Error: err.Error()}
	var rce *service.RemoteCallError
	if errors.As(err, &rce) {
		resp.Hint = rce.Hint
	}
	writeJSON(w, HTTPStatus(err), resp)
}
