package genai_service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type geminiSpeechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string              `json:"responseModalities,omitempty"`
	ThinkingConfig     *geminiThinkingConfig `json:"thinkingConfig,omitempty"`
	SpeechConfig       *geminiSpeechConfig   `json:"speechConfig,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// Voices are the prebuilt speech voices.
var Voices = []string{"Kore", "Puck", "Charon", "Fenrir", "Zephyr"}

// ImageAspectRatios are the ratios accepted by the image studio.
var ImageAspectRatios = []string{"1:1", "16:9", "9:16", "4:3", "3:4"}

func userContent(parts ...geminiPart) []geminiContent {
	return []geminiContent{{Role: "user", Parts: parts}}
}

func inlinePart(data []byte, mimeType string) geminiPart {
	return geminiPart{InlineData: &geminiInlineData{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

func (c *Client) generateContent(ctx context.Context, model string, request geminiGenerateContentRequest) (*geminiGenerateContentResponse, error) {
	var response geminiGenerateContentResponse
	if err := c.do(ctx, http.MethodPost, c.modelURL(model, "generateContent"), request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *geminiGenerateContentResponse) text() (string, error) {
	if len(r.Candidates) == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini API")
	}
	var builder strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		builder.WriteString(part.Text)
	}
	return builder.String(), nil
}

func (r *geminiGenerateContentResponse) firstInline() *geminiInlineData {
	if len(r.Candidates) == 0 {
		return nil
	}
	for _, part := range r.Candidates[0].Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			return part.InlineData
		}
	}
	return nil
}

// GenerateText answers prompt with the flash model, or with the pro model and
// the maximum thinking budget when highEffort is set.
func (c *Client) GenerateText(ctx context.Context, prompt string, highEffort bool) (string, error) {
	model := TextModel
	request := geminiGenerateContentRequest{Contents: userContent(geminiPart{Text: prompt})}
	if highEffort {
		model = ThinkingTextModel
		request.GenerationConfig = &geminiGenerationConfig{
			ThinkingConfig: &geminiThinkingConfig{ThinkingBudget: thinkingBudget},
		}
	}

	c.logger.Debug("Generating text", slog.String("model", model), slog.Int("prompt_length", len(prompt)))
	response, err := c.generateContent(ctx, model, request)
	if err != nil {
		return "", fmt.Errorf("error generating text: %w", err)
	}
	return response.text()
}

func (c *Client) GenerateTextWithSystem(ctx context.Context, systemInstruction, prompt string) (string, error) {
	request := geminiGenerateContentRequest{
		Contents:          userContent(geminiPart{Text: prompt}),
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}},
	}
	response, err := c.generateContent(ctx, TextModel, request)
	if err != nil {
		return "", fmt.Errorf("error generating text: %w", err)
	}
	return response.text()
}

func (c *Client) AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	request := geminiGenerateContentRequest{
		Contents: userContent(geminiPart{Text: prompt}, inlinePart(image, mimeType)),
	}
	response, err := c.generateContent(ctx, TextModel, request)
	if err != nil {
		return "", fmt.Errorf("error analyzing image: %w", err)
	}
	return response.text()
}

// GenerateImage returns the generated image as a data URI, or an empty string
// when the model answered without an image.
func (c *Client) GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error) {
	request := geminiGenerateContentRequest{
		Contents:         userContent(geminiPart{Text: fmt.Sprintf("%s, aspect ratio %s", prompt, aspectRatio)}),
		GenerationConfig: &geminiGenerationConfig{ResponseModalities: []string{"IMAGE"}},
	}
	response, err := c.generateContent(ctx, ImageModel, request)
	if err != nil {
		return "", fmt.Errorf("error generating image: %w", err)
	}
	return dataURI(response.firstInline()), nil
}

func (c *Client) EditImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	request := geminiGenerateContentRequest{
		Contents:         userContent(inlinePart(image, mimeType), geminiPart{Text: prompt}),
		GenerationConfig: &geminiGenerationConfig{ResponseModalities: []string{"IMAGE"}},
	}
	response, err := c.generateContent(ctx, ImageModel, request)
	if err != nil {
		return "", fmt.Errorf("error editing image: %w", err)
	}
	return dataURI(response.firstInline()), nil
}

// GenerateSpeech returns base64 encoded 24kHz mono 16-bit PCM, or an empty
// string when no audio came back.
func (c *Client) GenerateSpeech(ctx context.Context, text, voice string) (string, error) {
	speech := &geminiSpeechConfig{}
	speech.VoiceConfig.PrebuiltVoiceConfig.VoiceName = voice
	request := geminiGenerateContentRequest{
		Contents: userContent(geminiPart{Text: text}),
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig:       speech,
		},
	}
	response, err := c.generateContent(ctx, SpeechModel, request)
	if err != nil {
		return "", fmt.Errorf("error generating speech: %w", err)
	}
	inline := response.firstInline()
	if inline == nil {
		return "", nil
	}
	return inline.Data, nil
}

func dataURI(inline *geminiInlineData) string {
	if inline == nil {
		return ""
	}
	mimeType := inline.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, inline.Data)
}
