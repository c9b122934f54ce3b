package rest

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
)

const internalErrorMessage = "internal server error"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func isJSONContentType(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// statusFor maps a core error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError answers with the status for err. Client errors carry the
// validation message; server errors are logged and answered generically.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.requestLogger(r).Error("request failed", "err", err)
		writeError(w, status, internalErrorMessage)
		return
	}

	msg := http.StatusText(status)
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		msg = vErr.Error()
	}
	writeError(w, status, msg)
}
