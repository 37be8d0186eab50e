package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	apierrors "basketlens/internal/errors"
	"basketlens/internal/exporter"
	"basketlens/internal/services"
)

// respondList writes the success envelope used by every list endpoint
func respondList(w http.ResponseWriter, r *http.Request, data interface{}, count int) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  count,
	})
}

// respondData writes a single object in the success envelope
func respondData(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// translateError maps service sentinels onto API errors. Anything else is left
// for the error handler, which knows the domain error types.
func translateError(err error, sessionID string) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return apierrors.SessionNotFoundError(sessionID)
	case errors.Is(err, services.ErrDatasetNotLoaded):
		return apierrors.DatasetUnavailableError(err)
	case errors.Is(err, exporter.ErrUnsupportedFormat):
		return apierrors.UnsupportedFormatError(err.Error())
	default:
		return err
	}
}

// respondResult writes a mining result. Empty results are still a success; the
// envelope carries the flag and the explanation so clients can render it.
func respondResult(w http.ResponseWriter, r *http.Request, data interface{}, count int, empty bool, message string) {
	body := map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  count,
		"empty":  empty,
	}
	if message != "" {
		body["message"] = message
	}
	render.JSON(w, r, body)
}
