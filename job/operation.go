package job

import (
	"errors"
	"fmt"
)

// ErrNoArtifact is returned when an operation reports done without a video.
var ErrNoArtifact = errors.New("video operation completed but no artifact found")

// Operation is a long-running generation handle as returned by the service.
// Once Done is true the value is never refreshed again.
type Operation struct {
	Name     string           `json:"name"`
	Done     bool             `json:"done,omitempty"`
	Error    *OperationStatus `json:"error,omitempty"`
	Response *VideoResponse   `json:"response,omitempty"`
}

type OperationStatus struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type VideoResponse struct {
	GenerateVideoResponse GenerateVideoResponse `json:"generateVideoResponse"`
}

type GenerateVideoResponse struct {
	GeneratedSamples []GeneratedSample `json:"generatedSamples,omitempty"`
}

type GeneratedSample struct {
	Video Video `json:"video"`
}

type Video struct {
	URI string `json:"uri,omitempty"`
}

// VideoURI returns the download reference of the first generated sample.
func (o *Operation) VideoURI() string {
	if o == nil || o.Response == nil {
		return ""
	}
	for _, sample := range o.Response.GenerateVideoResponse.GeneratedSamples {
		if sample.Video.URI != "" {
			return sample.Video.URI
		}
	}
	return ""
}

// OperationError carries the failure reported by the remote operation.
type OperationError struct {
	Code    int
	Message string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("video operation failed: %s", e.Message)
}
