package layers

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

type mockGenerator struct {
	GenerateImageFunc func(ctx context.Context, prompt, aspectRatio string) (string, error)
	EditImageFunc     func(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

func (m *mockGenerator) GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error) {
	return m.GenerateImageFunc(ctx, prompt, aspectRatio)
}

func (m *mockGenerator) EditImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	return m.EditImageFunc(ctx, prompt, image, mimeType)
}

func TestGenerateLayer(t *testing.T) {
	src := solidDataURI(t, color.White)
	gen := &mockGenerator{
		GenerateImageFunc: func(ctx context.Context, prompt, aspectRatio string) (string, error) {
			if aspectRatio != "4:3" {
				t.Errorf("Expected aspect ratio 4:3, got %s", aspectRatio)
			}
			return src, nil
		},
	}
	studio := NewStudio(gen, &SourceLoader{}, discardLogger())

	layer, err := studio.GenerateLayer(context.Background(), "lighthouse", "4:3")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if layer.Src != src || layer.Name != "Generated: lighthouse..." {
		t.Errorf("Unexpected layer %+v", layer)
	}

	gen.GenerateImageFunc = func(ctx context.Context, prompt, aspectRatio string) (string, error) {
		return "", nil
	}
	if _, err := studio.GenerateLayer(context.Background(), "nothing", "1:1"); !errors.Is(err, ErrNoImageReturned) {
		t.Errorf("Expected ErrNoImageReturned, got %v", err)
	}
	if n := len(studio.Stack.Layers()); n != 1 {
		t.Errorf("Expected a failed generation to add nothing, got %d layers", n)
	}
}

func TestEditLayerSendsSourceImage(t *testing.T) {
	original := solidPNG(t, color.RGBA{R: 255, A: 255})
	edited := solidDataURI(t, color.RGBA{B: 255, A: 255})
	gen := &mockGenerator{
		EditImageFunc: func(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
			if !bytes.Equal(image, original) || mimeType != "image/png" {
				t.Errorf("Expected the layer's PNG bytes, got %d bytes of %s", len(image), mimeType)
			}
			return edited, nil
		},
	}
	studio := NewStudio(gen, &SourceLoader{}, discardLogger())
	source := studio.Upload(original, "red.png")
	if !strings.HasPrefix(source.Src, "data:image/png;base64,") {
		t.Fatalf("Expected an uploaded PNG data URI, got %.40s", source.Src)
	}

	layer, err := studio.EditLayer(context.Background(), source.ID, "make it blue")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := studio.Stack.Layers(); got[0].ID != layer.ID || layer.Src != edited {
		t.Errorf("Expected the edit on top of the stack, got %v", ids(got))
	}

	if _, err := studio.EditLayer(context.Background(), "missing", "x"); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("Expected ErrLayerNotFound, got %v", err)
	}
}

func TestExportPNG(t *testing.T) {
	studio := NewStudio(&mockGenerator{}, &SourceLoader{}, discardLogger())
	if _, _, err := studio.ExportPNG(context.Background(), "16:9"); !errors.Is(err, ErrNoVisibleLayers) {
		t.Fatalf("Expected ErrNoVisibleLayers, got %v", err)
	}

	studio.Upload(solidPNG(t, color.White), "white.png")
	data, result, err := studio.ExportPNG(context.Background(), "16:9")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Export is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1024 || b.Dy() != 576 {
		t.Errorf("Expected 1024x576, got %v", b)
	}
	if result.Drawn != 1 {
		t.Errorf("Expected one drawn layer, got %+v", result)
	}
}
