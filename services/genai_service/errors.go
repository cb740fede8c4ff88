package genai_service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GeminiError is the error envelope returned by the API.
type GeminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// APIError is a non-2xx response. Error() keeps the raw body so callers can
// classify on the nested message.
type APIError struct {
	StatusCode int
	Message    string
	Status     string
	RawBody    string
}

func (e *APIError) Error() string {
	if e.RawBody != "" {
		return fmt.Sprintf("Gemini API error (HTTP %d): %s", e.StatusCode, e.RawBody)
	}
	return fmt.Sprintf("Gemini API error (HTTP %d): %s", e.StatusCode, e.Message)
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}
	apiErr.RawBody = string(body)

	var geminiErr GeminiError
	if err := json.Unmarshal(body, &geminiErr); err == nil && geminiErr.Error.Message != "" {
		apiErr.Message = geminiErr.Error.Message
		apiErr.Status = geminiErr.Error.Status
	}
	return apiErr
}
