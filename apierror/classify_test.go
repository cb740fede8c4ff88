package apierror

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	longMessage := strings.Repeat("x", 250)

	tests := []struct {
		name          string
		err           error
		expectedCat   Category
		expectedMsg   string
		expectedReset bool
	}{
		{
			name:        "Quota keyword",
			err:         errors.New("Quota exceeded for project"),
			expectedCat: CategoryQuotaExceeded,
			expectedMsg: QuotaMessage,
		},
		{
			name:        "Nested RESOURCE_EXHAUSTED json",
			err:         errors.New(`{"error":{"message":"RESOURCE_EXHAUSTED: quota"}}`),
			expectedCat: CategoryQuotaExceeded,
			expectedMsg: QuotaMessage,
		},
		{
			name:        "Nested json behind wrapping text",
			err:         fmt.Errorf("submit video: %w", errors.New(`gemini error 429: {"error":{"message":"RESOURCE_EXHAUSTED: quota"}}`)),
			expectedCat: CategoryQuotaExceeded,
			expectedMsg: QuotaMessage,
		},
		{
			name:          "Invalid api key",
			err:           errors.New("API key not valid. Please pass a valid API key."),
			expectedCat:   CategoryInvalidCredential,
			expectedMsg:   InvalidCredentialMessage,
			expectedReset: true,
		},
		{
			name:          "Entity not found",
			err:           errors.New("Requested entity was not found."),
			expectedCat:   CategoryInvalidCredential,
			expectedMsg:   InvalidCredentialMessage,
			expectedReset: true,
		},
		{
			name:        "Nested message returned verbatim",
			err:         errors.New(`{"error":{"code":400,"message":"Prompt was blocked by safety filters"}}`),
			expectedCat: CategoryFailure,
			expectedMsg: "Prompt was blocked by safety filters",
		},
		{
			name:        "Short plain message",
			err:         errors.New("video operation failed: upstream timeout"),
			expectedCat: CategoryFailure,
			expectedMsg: "video operation failed: upstream timeout",
		},
		{
			name:        "Long plain message falls back",
			err:         errors.New(longMessage),
			expectedCat: CategoryDefault,
			expectedMsg: DefaultMessage("Video Hub"),
		},
		{
			name:        "Unparseable json falls back",
			err:         errors.New(`{"broken":`),
			expectedCat: CategoryDefault,
			expectedMsg: DefaultMessage("Video Hub"),
		},
		{
			name:        "JSON number falls back",
			err:         errors.New("42"),
			expectedCat: CategoryDefault,
			expectedMsg: DefaultMessage("Video Hub"),
		},
		{
			name:        "JSON null falls back",
			err:         errors.New("null"),
			expectedCat: CategoryDefault,
			expectedMsg: DefaultMessage("Video Hub"),
		},
		{
			name:        "JSON string falls back",
			err:         errors.New(`"upstream closed"`),
			expectedCat: CategoryDefault,
			expectedMsg: DefaultMessage("Video Hub"),
		},
		{
			name:        "Nil error",
			err:         nil,
			expectedCat: CategoryDefault,
			expectedMsg: DefaultMessage("Video Hub"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, "Video Hub")
			if got.Category != tt.expectedCat {
				t.Errorf("Expected category %s, got %s", tt.expectedCat, got.Category)
			}
			if got.Message != tt.expectedMsg {
				t.Errorf("Expected message %q, got %q", tt.expectedMsg, got.Message)
			}
			if got.ResetCredential != tt.expectedReset {
				t.Errorf("Expected reset %v, got %v", tt.expectedReset, got.ResetCredential)
			}
		})
	}
}

func TestIsInvalidCredential(t *testing.T) {
	if !IsInvalidCredential(errors.New("API key not valid")) {
		t.Error("Expected invalid key error to be detected")
	}
	if IsInvalidCredential(errors.New("quota")) || IsInvalidCredential(nil) {
		t.Error("Expected non-credential errors to be ignored")
	}
}
