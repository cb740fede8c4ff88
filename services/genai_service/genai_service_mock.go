package genai_service

import (
	"context"

	"github.com/serisow/studio/job"
)

// MockService implements Service with overridable functions.
type MockService struct {
	GenerateTextFunc           func(ctx context.Context, prompt string, highEffort bool) (string, error)
	GenerateTextWithSystemFunc func(ctx context.Context, systemInstruction, prompt string) (string, error)
	AnalyzeImageFunc           func(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
	GenerateImageFunc          func(ctx context.Context, prompt, aspectRatio string) (string, error)
	EditImageFunc              func(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
	GenerateSpeechFunc         func(ctx context.Context, text, voice string) (string, error)
	GenerateVideoFunc          func(ctx context.Context, prompt, aspectRatio string, startImage *InlineImage) (*job.Operation, error)
	ExtendVideoFunc            func(ctx context.Context, prompt string, previous job.Video, aspectRatio string) (*job.Operation, error)
	GetOperationFunc           func(ctx context.Context, name string) (*job.Operation, error)
	DownloadFunc               func(ctx context.Context, uri string) ([]byte, string, error)
}

func (m *MockService) GenerateText(ctx context.Context, prompt string, highEffort bool) (string, error) {
	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, prompt, highEffort)
	}
	return "mock response", nil
}

func (m *MockService) GenerateTextWithSystem(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if m.GenerateTextWithSystemFunc != nil {
		return m.GenerateTextWithSystemFunc(ctx, systemInstruction, prompt)
	}
	return "mock response", nil
}

func (m *MockService) AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if m.AnalyzeImageFunc != nil {
		return m.AnalyzeImageFunc(ctx, prompt, image, mimeType)
	}
	return "mock analysis", nil
}

func (m *MockService) GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error) {
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, prompt, aspectRatio)
	}
	return "", nil
}

func (m *MockService) EditImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if m.EditImageFunc != nil {
		return m.EditImageFunc(ctx, prompt, image, mimeType)
	}
	return "", nil
}

func (m *MockService) GenerateSpeech(ctx context.Context, text, voice string) (string, error) {
	if m.GenerateSpeechFunc != nil {
		return m.GenerateSpeechFunc(ctx, text, voice)
	}
	return "", nil
}

func (m *MockService) GenerateVideo(ctx context.Context, prompt, aspectRatio string, startImage *InlineImage) (*job.Operation, error) {
	if m.GenerateVideoFunc != nil {
		return m.GenerateVideoFunc(ctx, prompt, aspectRatio, startImage)
	}
	return &job.Operation{Name: "operations/mock"}, nil
}

func (m *MockService) ExtendVideo(ctx context.Context, prompt string, previous job.Video, aspectRatio string) (*job.Operation, error) {
	if m.ExtendVideoFunc != nil {
		return m.ExtendVideoFunc(ctx, prompt, previous, aspectRatio)
	}
	return &job.Operation{Name: "operations/mock-extend"}, nil
}

func (m *MockService) GetOperation(ctx context.Context, name string) (*job.Operation, error) {
	if m.GetOperationFunc != nil {
		return m.GetOperationFunc(ctx, name)
	}
	return &job.Operation{Name: name, Done: true}, nil
}

func (m *MockService) Download(ctx context.Context, uri string) ([]byte, string, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, uri)
	}
	return []byte{}, "video/mp4", nil
}
