package handlers

import (
	"log/slog"
	"net/http"

	"github.com/serisow/studio/prefs"
)

type ThemeHandler struct {
	store  *prefs.Store
	logger *slog.Logger
}

func NewThemeHandler(store *prefs.Store, logger *slog.Logger) *ThemeHandler {
	return &ThemeHandler{store: store, logger: logger}
}

func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]prefs.Theme{"theme": h.store.Theme()})
}

func (h *ThemeHandler) Put(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme string `json:"theme"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	theme, err := prefs.ParseTheme(body.Theme)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.SetTheme(theme); err != nil {
		writeError(w, h.logger, err, "Theme", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]prefs.Theme{"theme": theme})
}
