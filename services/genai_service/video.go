package genai_service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/serisow/studio/job"
)

// VideoAspectRatios are the ratios the video models accept.
var VideoAspectRatios = []string{"16:9", "9:16"}

const videoResolution = "720p"

type veoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type veoVideo struct {
	URI string `json:"uri"`
}

type veoInstance struct {
	Prompt string    `json:"prompt"`
	Image  *veoImage `json:"image,omitempty"`
	Video  *veoVideo `json:"video,omitempty"`
}

type veoParameters struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	SampleCount int    `json:"sampleCount"`
}

type veoRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParameters `json:"parameters"`
}

// GenerateVideo submits a video job and returns its operation handle.
func (c *Client) GenerateVideo(ctx context.Context, prompt, aspectRatio string, startImage *InlineImage) (*job.Operation, error) {
	instance := veoInstance{Prompt: prompt}
	if startImage != nil && len(startImage.Data) > 0 {
		instance.Image = &veoImage{
			BytesBase64Encoded: base64.StdEncoding.EncodeToString(startImage.Data),
			MimeType:           startImage.MimeType,
		}
	}
	return c.predictLongRunning(ctx, VideoModel, instance, aspectRatio)
}

// ExtendVideo submits a continuation of a previously generated video.
func (c *Client) ExtendVideo(ctx context.Context, prompt string, previous job.Video, aspectRatio string) (*job.Operation, error) {
	if previous.URI == "" {
		return nil, fmt.Errorf("previous video reference is empty")
	}
	instance := veoInstance{Prompt: prompt, Video: &veoVideo{URI: previous.URI}}
	return c.predictLongRunning(ctx, ExtendVideoModel, instance, aspectRatio)
}

func (c *Client) predictLongRunning(ctx context.Context, model string, instance veoInstance, aspectRatio string) (*job.Operation, error) {
	request := veoRequest{
		Instances: []veoInstance{instance},
		Parameters: veoParameters{
			AspectRatio: aspectRatio,
			Resolution:  videoResolution,
			SampleCount: 1,
		},
	}

	var operation job.Operation
	if err := c.do(ctx, http.MethodPost, c.modelURL(model, "predictLongRunning"), request, &operation); err != nil {
		return nil, fmt.Errorf("error submitting video job: %w", err)
	}
	c.logger.Info("Video job submitted",
		slog.String("model", model),
		slog.String("operation", operation.Name),
		slog.String("aspect_ratio", aspectRatio))
	return &operation, nil
}

// GetOperation refreshes a long-running operation by name.
func (c *Client) GetOperation(ctx context.Context, name string) (*job.Operation, error) {
	var operation job.Operation
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.baseURL, name), nil, &operation); err != nil {
		return nil, err
	}
	return &operation, nil
}

// Download fetches generated media. The API key is passed as the key query
// parameter, as the media URIs require.
func (c *Client) Download(ctx context.Context, uri string) ([]byte, string, error) {
	key, err := c.keys.Require()
	if err != nil {
		return nil, "", err
	}
	target, err := withKey(uri, key)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("error creating download request: %w", withoutKey(err, uri))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("error downloading media: %w", withoutKey(err, uri))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", newAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("error reading media: %w", withoutKey(err, uri))
	}
	return data, resp.Header.Get("Content-Type"), nil
}
