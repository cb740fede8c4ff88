package handlers

import (
	"log/slog"
	"net/http"

	"github.com/serisow/studio/studio"
)

type ChatHandler struct {
	chat   *studio.Chat
	logger *slog.Logger
}

func NewChatHandler(chat *studio.Chat, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text        string `json:"text"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
		Thinking    bool   `json:"thinking"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	image, err := inlineImage(body.ImageBase64, body.MimeType)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	reply, err := h.chat.Send(r.Context(), studio.ChatRequest{Text: body.Text, Image: image, Thinking: body.Thinking})
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": h.chat.History()})
}

func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.chat.Reset()
	w.WriteHeader(http.StatusNoContent)
}
