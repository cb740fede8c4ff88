package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/serisow/studio/apierror"
	"github.com/serisow/studio/credentials"
	"github.com/serisow/studio/job"
	"github.com/serisow/studio/layers"
	"github.com/serisow/studio/services/genai_service"
	"github.com/serisow/studio/thumbnail"
	"github.com/serisow/studio/timeline"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "Credential required",
			err:             credentials.ErrCredentialRequired,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: credentials.ErrCredentialRequired.Error(),
		},
		{
			name:            "Busy",
			err:             job.ErrBusy,
			expectedStatus:  http.StatusConflict,
			expectedMessage: job.ErrBusy.Error(),
		},
		{
			name:            "Wrapped not found",
			err:             fmt.Errorf("update: %w", layers.ErrLayerNotFound),
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "update: layer not found",
		},
		{
			name:            "No visible layers",
			err:             layers.ErrNoVisibleLayers,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "no visible layers to download",
		},
		{
			name: "Nested quota error",
			err: &genai_service.APIError{
				StatusCode: 429,
				RawBody:    `{"error":{"code":429,"message":"Quota exceeded for generate requests","status":"RESOURCE_EXHAUSTED"}}`,
			},
			expectedStatus:  http.StatusTooManyRequests,
			expectedMessage: apierror.QuotaMessage,
		},
		{
			name: "Invalid key",
			err: &genai_service.APIError{
				StatusCode: 400,
				RawBody:    `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: apierror.InvalidCredentialMessage,
		},
		{
			name:            "Remote operation failure",
			err:             &job.OperationError{Code: 3, Message: "prompt rejected"},
			expectedStatus:  http.StatusBadGateway,
			expectedMessage: "video operation failed: prompt rejected",
		},
		{
			name:            "Source video missing",
			err:             timeline.ErrSourceMediaUnavailable,
			expectedStatus:  http.StatusConflict,
			expectedMessage: "Could not find video data from the selected scene.",
		},
		{
			name:            "Model returned no image",
			err:             fmt.Errorf("generate layer: %w", layers.ErrNoImageReturned),
			expectedStatus:  http.StatusBadGateway,
			expectedMessage: layers.NoImageMessage,
		},
		{
			name:            "Model returned no background",
			err:             thumbnail.ErrBackgroundNotReturned,
			expectedStatus:  http.StatusBadGateway,
			expectedMessage: thumbnail.NoBackgroundMessage,
		},
		{
			name:            "Unknown error",
			err:             errors.New("disk on fire"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: apierror.DefaultMessage("VideoHub"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := statusFor(tt.err, "VideoHub")
			if status != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, status)
			}
			if message != tt.expectedMessage {
				t.Errorf("Expected message %q, got %q", tt.expectedMessage, message)
			}
		})
	}
}

func TestInlineImage(t *testing.T) {
	tests := []struct {
		name         string
		encoded      string
		mimeType     string
		expectedMime string
		expectNil    bool
		expectErr    bool
	}{
		{name: "Empty", expectNil: true},
		{name: "Plain base64", encoded: "aGVsbG8=", mimeType: "image/png", expectedMime: "image/png"},
		{name: "Data URI", encoded: "data:image/jpeg;base64,aGVsbG8=", mimeType: "image/jpeg", expectedMime: "image/jpeg"},
		{name: "Sniffed type", encoded: "aGVsbG8=", expectedMime: "text/plain; charset=utf-8"},
		{name: "Invalid", encoded: "%%%", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := inlineImage(tt.encoded, tt.mimeType)
			if tt.expectErr {
				if err == nil {
					t.Fatal("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.expectNil {
				if img != nil {
					t.Errorf("Expected nil image, got %+v", img)
				}
				return
			}
			if string(img.Data) != "hello" || img.MimeType != tt.expectedMime {
				t.Errorf("Unexpected image %q %s", img.Data, img.MimeType)
			}
		})
	}
}
