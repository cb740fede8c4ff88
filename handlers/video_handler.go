package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/serisow/studio/media"
	"github.com/serisow/studio/timeline"
)

const videoComponent = "VideoHub"

type VideoHandler struct {
	hub    *timeline.Hub
	media  *media.Store
	logger *slog.Logger
}

func NewVideoHandler(hub *timeline.Hub, store *media.Store, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{hub: hub, media: store, logger: logger}
}

// CreateScene starts a video job. The client polls Status until the job
// settles.
func (h *VideoHandler) CreateScene(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt      string `json:"prompt"`
		AspectRatio string `json:"aspect_ratio"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.AspectRatio == "" {
		body.AspectRatio = "16:9"
	}
	image, err := inlineImage(body.ImageBase64, body.MimeType)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := timeline.SceneRequest{Prompt: body.Prompt, AspectRatio: body.AspectRatio, StartImage: image}
	if err := h.hub.StartScene(req); err != nil {
		writeError(w, h.logger, err, videoComponent, "")
		return
	}
	writeJSON(w, http.StatusAccepted, h.hub.Status())
}

func (h *VideoHandler) ExtendScene(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt      string `json:"prompt"`
		AspectRatio string `json:"aspect_ratio"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := h.hub.StartExtension(mux.Vars(r)["id"], body.Prompt, body.AspectRatio); err != nil {
		writeError(w, h.logger, err, videoComponent, "")
		return
	}
	writeJSON(w, http.StatusAccepted, h.hub.Status())
}

func (h *VideoHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.hub.Status())
}

func (h *VideoHandler) Scenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scenes":            h.hub.Timeline().Scenes(),
		"selected_scene_id": h.hub.Timeline().SelectedID(),
	})
}

func (h *VideoHandler) SelectScene(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.Timeline().Select(mux.Vars(r)["id"]); err != nil {
		writeError(w, h.logger, err, videoComponent, "")
		return
	}
	scene, _ := h.hub.Timeline().Selected()
	writeJSON(w, http.StatusOK, scene)
}

func (h *VideoHandler) DeleteScene(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.DeleteScene(mux.Vars(r)["id"]); err != nil {
		writeError(w, h.logger, err, videoComponent, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VideoHandler) ReorderScenes(w http.ResponseWriter, r *http.Request) {
	var body reorderRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if !h.hub.Timeline().Reorder(body.From, body.To) && body.From != body.To {
		writeJSONError(w, "scene index out of range", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scenes": h.hub.Timeline().Scenes()})
}

// Clear empties the timeline. Without confirm it is a no-op.
func (h *VideoHandler) Clear(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": h.hub.ClearTimeline(body.Confirm)})
}

func (h *VideoHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt      string `json:"prompt"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	image, err := inlineImage(body.ImageBase64, body.MimeType)
	if err != nil || image == nil {
		writeJSONError(w, "an image is required", http.StatusBadRequest)
		return
	}
	text, err := h.hub.Analyze(r.Context(), body.Prompt, *image)
	if err != nil {
		writeError(w, h.logger, err, videoComponent, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// Media serves a stored blob such as a scene's clip.
func (h *VideoHandler) Media(w http.ResponseWriter, r *http.Request) {
	blob, ok := h.media.Get(mux.Vars(r)["ref"])
	if !ok {
		writeJSONError(w, "media not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", blob.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.Write(blob.Data)
}

// Export joins the timeline into one MP4 download.
func (h *VideoHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.hub.Export(r.Context(), &buf); err != nil {
		writeError(w, h.logger, err, videoComponent, "")
		return
	}
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="timeline.mp4"`)
	w.Write(buf.Bytes())
}
