package layers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"

	"github.com/serisow/studio/raster"
)

const NoImageMessage = "Failed to generate image. The model did not return any content. Please try again with a different prompt."

var (
	ErrNoImageReturned = errors.New("model returned no image")
	ErrPromptRequired  = errors.New("prompt is required")
)

// ImageGenerator is the part of the generation service the image studio uses.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error)
	EditImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Studio is the image studio panel: a layer stack fed by the generator.
type Studio struct {
	Stack     *Stack
	generator ImageGenerator
	loader    Loader
	logger    *slog.Logger
}

func NewStudio(generator ImageGenerator, loader Loader, logger *slog.Logger) *Studio {
	return &Studio{
		Stack:     NewStack(),
		generator: generator,
		loader:    loader,
		logger:    logger,
	}
}

// GenerateLayer asks for an image and adds it on top of the stack.
func (s *Studio) GenerateLayer(ctx context.Context, prompt, aspectRatio string) (Layer, error) {
	if prompt == "" {
		return Layer{}, ErrPromptRequired
	}
	src, err := s.generator.GenerateImage(ctx, prompt, aspectRatio)
	if err != nil {
		return Layer{}, err
	}
	if src == "" {
		return Layer{}, ErrNoImageReturned
	}
	layer := s.Stack.AddGenerated(src, prompt)
	s.logger.Info("Layer generated", slog.String("layer_id", layer.ID), slog.String("aspect_ratio", aspectRatio))
	return layer, nil
}

// EditLayer sends a layer's image with an instruction and adds the edited
// result as a new layer above it.
func (s *Studio) EditLayer(ctx context.Context, id, prompt string) (Layer, error) {
	if prompt == "" {
		return Layer{}, ErrPromptRequired
	}
	source, ok := s.Stack.Get(id)
	if !ok {
		return Layer{}, ErrLayerNotFound
	}
	data, mimeType, err := raster.ParseDataURI(source.Src)
	if err != nil {
		img, loadErr := s.loader.Load(ctx, source.Src)
		if loadErr != nil {
			return Layer{}, fmt.Errorf("failed to load layer image: %w", loadErr)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return Layer{}, fmt.Errorf("failed to encode layer image: %w", err)
		}
		data, mimeType = buf.Bytes(), "image/png"
	}

	src, err := s.generator.EditImage(ctx, prompt, data, mimeType)
	if err != nil {
		return Layer{}, err
	}
	if src == "" {
		return Layer{}, ErrNoImageReturned
	}
	return s.Stack.AddGenerated(src, prompt), nil
}

// Upload adds an uploaded file as a layer.
func (s *Studio) Upload(data []byte, filename string) Layer {
	mimeType := http.DetectContentType(data)
	return s.Stack.AddUploaded(raster.EncodeDataURI(data, mimeType), filename)
}

// ExportPNG flattens the stack at the size for aspectRatio and encodes it.
func (s *Studio) ExportPNG(ctx context.Context, aspectRatio string) ([]byte, *FlattenResult, error) {
	width, height, err := SizeForAspect(aspectRatio, MaxDimension)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.Stack.Flatten(ctx, width, height, s.loader, s.logger)
	if err != nil {
		return nil, nil, err
	}
	if result.Failed > 0 {
		s.logger.Warn("Flattened with missing layers", slog.Int("failed", result.Failed), slog.Int("drawn", result.Drawn))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result.Image); err != nil {
		return nil, nil, fmt.Errorf("failed to encode composition: %w", err)
	}
	return buf.Bytes(), result, nil
}
