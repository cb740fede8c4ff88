package handlers

import (
	"log/slog"
	"net/http"

	"github.com/serisow/studio/thumbnail"
)

const thumbnailComponent = "ThumbnailGenerator"

type ThumbnailHandler struct {
	session *thumbnail.Session
	logger  *slog.Logger
}

func NewThumbnailHandler(session *thumbnail.Session, logger *slog.Logger) *ThumbnailHandler {
	return &ThumbnailHandler{session: session, logger: logger}
}

func (h *ThumbnailHandler) Document(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Document())
}

func (h *ThumbnailHandler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": thumbnail.Templates()})
}

func (h *ThumbnailHandler) SelectTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Template string `json:"template"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	doc, err := h.session.SelectTemplate(body.Template)
	if err != nil {
		writeError(w, h.logger, err, thumbnailComponent, "")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *ThumbnailHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch thumbnail.Patch
	if !decodeBody(w, r, &patch) {
		return
	}
	doc, err := h.session.Update(patch)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *ThumbnailHandler) GenerateBackground(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	doc, err := h.session.GenerateBackground(r.Context(), body.Prompt)
	if err != nil {
		writeError(w, h.logger, err, thumbnailComponent, "")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *ThumbnailHandler) Layout(w http.ResponseWriter, r *http.Request) {
	layout, err := h.session.Layout()
	if err != nil {
		writeError(w, h.logger, err, thumbnailComponent, "")
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (h *ThumbnailHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.session.ExportPNG(r.Context())
	if err != nil {
		writeError(w, h.logger, err, thumbnailComponent, "")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="thumbnail.png"`)
	w.Write(data)
}
