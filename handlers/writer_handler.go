package handlers

import (
	"log/slog"
	"net/http"

	"github.com/serisow/studio/studio"
)

// WriterHandler serves the script writer, story teller and music lab.
type WriterHandler struct {
	writer *studio.Writer
	logger *slog.Logger
}

func NewWriterHandler(writer *studio.Writer, logger *slog.Logger) *WriterHandler {
	return &WriterHandler{writer: writer, logger: logger}
}

func (h *WriterHandler) Script(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
		Format string `json:"format"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Prompt == "" {
		writeJSONError(w, "prompt is required", http.StatusBadRequest)
		return
	}
	text, err := h.writer.WriteScript(r.Context(), body.Prompt, body.Format)
	if err != nil {
		writeError(w, h.logger, err, "ScriptWriter", studio.ScriptFailureMessage)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (h *WriterHandler) Story(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
		Genre  string `json:"genre"`
		Tone   string `json:"tone"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Prompt == "" {
		writeJSONError(w, "prompt is required", http.StatusBadRequest)
		return
	}
	text, err := h.writer.TellStory(r.Context(), body.Prompt, body.Genre, body.Tone)
	if err != nil {
		writeError(w, h.logger, err, "StoryTeller", studio.StoryFailureMessage)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// Music fills any field the request leaves out from the lab's defaults.
func (h *WriterHandler) Music(w http.ResponseWriter, r *http.Request) {
	req := studio.DefaultMusicRequest()
	if !decodeBody(w, r, &req) {
		return
	}
	text, err := h.writer.ComposeMusic(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err, "MusicLab", studio.MusicFailureMessage)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}
