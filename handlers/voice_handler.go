package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/serisow/studio/studio"
)

const (
	voiceComponent     = "VoiceLab"
	voiceFailedMessage = "An unexpected error occurred during speech generation."
)

type VoiceHandler struct {
	lab    *studio.VoiceLab
	logger *slog.Logger
}

func NewVoiceHandler(lab *studio.VoiceLab, logger *slog.Logger) *VoiceHandler {
	return &VoiceHandler{lab: lab, logger: logger}
}

// Synthesize returns the spoken text as audio/wav.
func (h *VoiceHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text  string `json:"text"`
		Voice string `json:"voice"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Voice == "" {
		body.Voice = "Kore"
	}

	wav, err := h.lab.Synthesize(r.Context(), body.Text, body.Voice)
	if errors.Is(err, studio.ErrTextRequired) || errors.Is(err, studio.ErrUnknownVoice) {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, studio.ErrNoSpeech) {
		writeJSONError(w, studio.NoSpeechMessage, http.StatusBadGateway)
		return
	}
	if err != nil {
		writeError(w, h.logger, err, voiceComponent, voiceFailedMessage)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", `attachment; filename="speech.wav"`)
	w.Write(wav)
}
