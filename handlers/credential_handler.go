package handlers

import (
	"log/slog"
	"net/http"

	"github.com/serisow/studio/credentials"
)

type CredentialHandler struct {
	store  *credentials.Store
	logger *slog.Logger
}

func NewCredentialHandler(store *credentials.Store, logger *slog.Logger) *CredentialHandler {
	return &CredentialHandler{store: store, logger: logger}
}

func (h *CredentialHandler) Select(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"api_key"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := h.store.Select(body.APIKey); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.logger.Info("API key selected")
	writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func (h *CredentialHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ready": h.store.Ready()})
}
