// internal/workers/dialog/dialog-hook/server.go
package dialoghook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/models"
)

const (
	HookPath     = "/dialog/hook"
	maxEventSize = 1 << 20
)

// RegisterRoutes mounts the code hook endpoint on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(HookPath, h.ServeHTTP)
}

// ServeHTTP decodes a code hook event and writes the dialog response.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "use POST")
		return
	}

	var event models.HookEvent
	if err := json.NewDecoder(io.LimitReader(r.Body, maxEventSize)).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_EVENT", err.Error())
		return
	}

	resp, err := h.Handle(r.Context(), &event)
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			writeError(w, http.StatusUnprocessableEntity, string(stdErr.Code), stdErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
