package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"vidora-client/internal/middleware"
	"vidora-client/pkg/errors"
	"vidora-client/pkg/logger"
)

// Response is the success envelope of every bridge endpoint
type Response struct {
	Data    interface{} `json:"data"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, message string, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Response{Data: data, Success: true, Message: message}); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	middleware.WriteError(w, r, err, log)
}

// decodeBody reads a JSON request body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.NewValidationError("Invalid request body", map[string]interface{}{
			"reason": err.Error(),
		})
	}
	return nil
}

// await blocks until done closes or the request goes away. It reports
// whether the operation finished.
func await(ctx context.Context, done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

func timeoutError() error {
	return errors.NewNetworkError("Request cancelled before the operation finished", nil)
}
