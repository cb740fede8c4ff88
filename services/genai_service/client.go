package genai_service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/serisow/studio/job"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	TextModel         = "gemini-2.5-flash"
	ThinkingTextModel = "gemini-2.5-pro"
	ImageModel        = "gemini-2.5-flash-image"
	SpeechModel       = "gemini-2.5-flash-preview-tts"
	VideoModel        = "veo-3.1-fast-generate-preview"
	ExtendVideoModel  = "veo-3.1-generate-preview"

	thinkingBudget = 32768
)

// Service is the generation surface used by the studio panels.
type Service interface {
	GenerateText(ctx context.Context, prompt string, highEffort bool) (string, error)
	GenerateTextWithSystem(ctx context.Context, systemInstruction, prompt string) (string, error)
	AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error)
	EditImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
	GenerateSpeech(ctx context.Context, text, voice string) (string, error)
	GenerateVideo(ctx context.Context, prompt, aspectRatio string, startImage *InlineImage) (*job.Operation, error)
	ExtendVideo(ctx context.Context, prompt string, previous job.Video, aspectRatio string) (*job.Operation, error)
	GetOperation(ctx context.Context, name string) (*job.Operation, error)
	Download(ctx context.Context, uri string) ([]byte, string, error)
}

// KeySource supplies the API key for each call.
type KeySource interface {
	Require() (string, error)
}

// InlineImage is raw image bytes sent along with a request.
type InlineImage struct {
	Data     []byte
	MimeType string
}

// Options controls how the client is configured.
type Options struct {
	BaseURL    string
	Keys       KeySource
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	baseURL    string
	keys       KeySource
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a client with sane defaults. A nil HTTP client is
// replaced with one that has a generous timeout for media downloads.
func NewClient(opts Options) (*Client, error) {
	if opts.Keys == nil {
		return nil, fmt.Errorf("a key source is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		keys:       opts.Keys,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *Client) modelURL(model, method string) string {
	return fmt.Sprintf("%s/models/%s:%s", c.baseURL, model, method)
}

// withKey appends the API key as the key query parameter, keeping any
// parameters already present on rawURL.
func withKey(rawURL, key string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("error parsing url: %w", err)
	}
	query := parsed.Query()
	query.Set("key", key)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// withoutKey swaps the keyed URL carried by a transport error for the
// keyless endpoint. Such errors end up in logs and hub status messages.
func withoutKey(err error, endpoint string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = endpoint
	}
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload interface{}, out interface{}) error {
	key, err := c.keys.Require()
	if err != nil {
		return err
	}
	target, err := withKey(endpoint, key)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		requestBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("error marshaling request body: %w", err)
		}
		body = bytes.NewReader(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", withoutKey(err, endpoint))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", withoutKey(err, endpoint))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp)
		c.logger.Error("Gemini API request failed",
			slog.String("endpoint", endpoint),
			slog.Int("status", apiErr.StatusCode),
			slog.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}
	return nil
}
