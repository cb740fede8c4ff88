package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/serisow/studio/layers"
)

const imageComponent = "ImageStudio"

type ImageHandler struct {
	studio *layers.Studio
	logger *slog.Logger
}

func NewImageHandler(studio *layers.Studio, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{studio: studio, logger: logger}
}

func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"layers": h.studio.Stack.Layers()})
}

func (h *ImageHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt      string `json:"prompt"`
		AspectRatio string `json:"aspect_ratio"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Prompt == "" {
		writeJSONError(w, "prompt is required", http.StatusBadRequest)
		return
	}
	if body.AspectRatio == "" {
		body.AspectRatio = "1:1"
	}
	layer, err := h.studio.GenerateLayer(r.Context(), body.Prompt, body.AspectRatio)
	if err != nil {
		writeError(w, h.logger, err, imageComponent, "")
		return
	}
	writeJSON(w, http.StatusCreated, layer)
}

func (h *ImageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Prompt == "" {
		writeJSONError(w, "prompt is required", http.StatusBadRequest)
		return
	}
	layer, err := h.studio.EditLayer(r.Context(), mux.Vars(r)["id"], body.Prompt)
	if err != nil {
		writeError(w, h.logger, err, imageComponent, "")
		return
	}
	writeJSON(w, http.StatusCreated, layer)
}

func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "Failed to get file from form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		writeJSONError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}
	h.logger.Debug("Layer uploaded",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))
	writeJSON(w, http.StatusCreated, h.studio.Upload(buf.Bytes(), header.Filename))
}

func (h *ImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch layers.Patch
	if !decodeBody(w, r, &patch) {
		return
	}
	layer, err := h.studio.Stack.Update(mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, h.logger, err, imageComponent, "")
		return
	}
	writeJSON(w, http.StatusOK, layer)
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.studio.Stack.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, h.logger, err, imageComponent, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ImageHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var body reorderRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if !h.studio.Stack.Reorder(body.From, body.To) && body.From != body.To {
		writeJSONError(w, "layer index out of range", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"layers": h.studio.Stack.Layers()})
}

// Composition flattens the visible layers into a PNG download.
func (h *ImageHandler) Composition(w http.ResponseWriter, r *http.Request) {
	aspectRatio := r.URL.Query().Get("aspect_ratio")
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}
	data, result, err := h.studio.ExportPNG(r.Context(), aspectRatio)
	if err != nil {
		writeError(w, h.logger, err, imageComponent, "")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="composition.png"`)
	w.Header().Set("X-Layers-Drawn", strconv.Itoa(result.Drawn))
	w.Header().Set("X-Layers-Failed", strconv.Itoa(result.Failed))
	w.Write(data)
}
