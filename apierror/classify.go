package apierror

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Category string

const (
	CategoryQuotaExceeded     Category = "quota_exceeded"
	CategoryInvalidCredential Category = "invalid_credential"
	CategoryFailure           Category = "failure"
	CategoryDefault           Category = "default"
)

const (
	QuotaMessage             = "You have exceeded your API usage quota. Please check your plan and billing details, or try again later. For more information, visit https://ai.google.dev/gemini-api/docs/rate-limits."
	InvalidCredentialMessage = "Your API key appears to be invalid or missing required permissions. Please select a valid key to continue."

	maxVerbatimLength = 200
)

// Classification is the user-facing reading of a remote error.
type Classification struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
	// ResetCredential tells the caller the stored API key must be discarded
	// and re-selected before any further remote call.
	ResetCredential bool `json:"reset_credential"`
}

type nestedError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// DefaultMessage is the fallback text shown for errors in component.
func DefaultMessage(component string) string {
	return fmt.Sprintf("An unexpected error occurred in %s. Please try again.", component)
}

// Classify maps err into one of the user-facing categories. A nil error
// classifies as the component's default message.
func Classify(err error, component string) Classification {
	if err == nil {
		return Classification{Category: CategoryDefault, Message: DefaultMessage(component)}
	}
	raw := err.Error()
	message := strings.ToLower(raw)

	if strings.Contains(message, "quota") || strings.Contains(message, "resource_exhausted") {
		return quota()
	}
	if strings.Contains(message, "requested entity was not found") || strings.Contains(message, "api key not valid") {
		return invalidCredential()
	}

	if nested, ok := nestedMessage(raw); ok {
		lowered := strings.ToLower(nested)
		if strings.Contains(lowered, "quota") {
			return quota()
		}
		if strings.Contains(lowered, "api key not valid") {
			return invalidCredential()
		}
		return Classification{Category: CategoryFailure, Message: nested}
	}

	if raw != "" && len(raw) < maxVerbatimLength && !strings.HasPrefix(raw, "{") && !json.Valid([]byte(raw)) {
		return Classification{Category: CategoryFailure, Message: raw}
	}
	return Classification{Category: CategoryDefault, Message: DefaultMessage(component)}
}

// IsInvalidCredential reports whether err means the API key is unusable.
func IsInvalidCredential(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "requested entity was not found") || strings.Contains(message, "api key not valid")
}

// nestedMessage extracts error.message from raw, either when raw is a JSON
// document or when a JSON object is embedded in a wrapped error string.
func nestedMessage(raw string) (string, bool) {
	candidates := []string{raw}
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start > 0 && end > start {
		candidates = append(candidates, raw[start:end+1])
	}
	for _, candidate := range candidates {
		var parsed nestedError
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil && parsed.Error.Message != "" {
			return parsed.Error.Message, true
		}
	}
	return "", false
}

func quota() Classification {
	return Classification{Category: CategoryQuotaExceeded, Message: QuotaMessage}
}

func invalidCredential() Classification {
	return Classification{Category: CategoryInvalidCredential, Message: InvalidCredentialMessage, ResetCredential: true}
}
