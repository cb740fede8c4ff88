package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/serisow/studio/apierror"
	"github.com/serisow/studio/credentials"
	"github.com/serisow/studio/job"
	"github.com/serisow/studio/layers"
	"github.com/serisow/studio/prefs"
	"github.com/serisow/studio/services/genai_service"
	"github.com/serisow/studio/thumbnail"
	"github.com/serisow/studio/timeline"
)

const maxBodyBytes = 32 << 20

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps err to a status code and a user-facing message. Remote
// failures are classified for component; fallback replaces the generic
// message when the classification has nothing more specific to say.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, component, fallback string) {
	status, message := statusFor(err, component)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	logger.Error("Request failed",
		slog.String("component", component),
		slog.Int("status", status),
		slog.String("error", err.Error()))
	writeJSONError(w, message, status)
}

func statusFor(err error, component string) (int, string) {
	switch {
	case errors.Is(err, credentials.ErrCredentialRequired):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, job.ErrBusy):
		return http.StatusConflict, err.Error()
	case errors.Is(err, timeline.ErrSceneNotFound), errors.Is(err, layers.ErrLayerNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, timeline.ErrSourceMediaUnavailable):
		return http.StatusConflict, timeline.SourceMediaUnavailableMessage
	case errors.Is(err, layers.ErrNoImageReturned):
		return http.StatusBadGateway, layers.NoImageMessage
	case errors.Is(err, thumbnail.ErrBackgroundNotReturned):
		return http.StatusBadGateway, thumbnail.NoBackgroundMessage
	case errors.Is(err, layers.ErrNoVisibleLayers),
		errors.Is(err, layers.ErrInvalidAspectRatio),
		errors.Is(err, thumbnail.ErrNoBackground),
		errors.Is(err, thumbnail.ErrUnknownTemplate),
		errors.Is(err, timeline.ErrEmptyTimeline),
		errors.Is(err, timeline.ErrPromptRequired),
		errors.Is(err, layers.ErrPromptRequired),
		errors.Is(err, prefs.ErrInvalidTheme):
		return http.StatusBadRequest, err.Error()
	}

	var apiErr *genai_service.APIError
	if errors.As(err, &apiErr) {
		c := apierror.Classify(err, component)
		switch c.Category {
		case apierror.CategoryQuotaExceeded:
			return http.StatusTooManyRequests, c.Message
		case apierror.CategoryInvalidCredential:
			return http.StatusUnauthorized, c.Message
		}
		return http.StatusBadGateway, c.Message
	}
	var opErr *job.OperationError
	if errors.As(err, &opErr) {
		return http.StatusBadGateway, apierror.Classify(err, component).Message
	}
	return http.StatusInternalServerError, apierror.DefaultMessage(component)
}

// inlineImage decodes an optional base64 image from a request body.
func inlineImage(encoded, mimeType string) (*genai_service.InlineImage, error) {
	if encoded == "" {
		return nil, nil
	}
	if strings.HasPrefix(encoded, "data:") {
		if _, payload, ok := strings.Cut(encoded, ","); ok {
			encoded = payload
		}
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("image_base64 is not valid base64: %w", err)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return &genai_service.InlineImage{Data: data, MimeType: mimeType}, nil
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}
