package thumbnail

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/serisow/studio/raster"
)

const NoBackgroundMessage = "Failed to generate background. The model did not return any content. Please try a different prompt."

var ErrBackgroundNotReturned = errors.New("model returned no background image")

const backgroundAspectRatio = "16:9"

// ImageGenerator produces an image data URI for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error)
}

// Generator requests thumbnail backgrounds in a template's style.
type Generator struct {
	images ImageGenerator
	logger *slog.Logger
}

func NewGenerator(images ImageGenerator, logger *slog.Logger) *Generator {
	return &Generator{images: images, logger: logger}
}

// GenerateBackground enhances prompt with the template's art direction and
// asks for a 16:9 image.
func (g *Generator) GenerateBackground(ctx context.Context, template Template, prompt string) (string, error) {
	full := template.EnhancePrompt(prompt)
	g.logger.Info("Generating thumbnail background", slog.String("template", template.Key))

	src, err := g.images.GenerateImage(ctx, full, backgroundAspectRatio)
	if err != nil {
		return "", err
	}
	if src == "" {
		return "", ErrBackgroundNotReturned
	}
	return src, nil
}

// Patch holds the optional fields of a thumbnail edit.
type Patch struct {
	Title            *string    `json:"title,omitempty"`
	Subtitle         *string    `json:"subtitle,omitempty"`
	TitleStyle       *TextStyle `json:"title_style,omitempty"`
	SubtitleStyle    *TextStyle `json:"subtitle_style,omitempty"`
	BackgroundPrompt *string    `json:"background_prompt,omitempty"`
	Background       *string    `json:"background,omitempty"`
	Overlay          *Overlay   `json:"overlay,omitempty"`
}

// Session is the thumbnail being edited.
type Session struct {
	mu        sync.RWMutex
	doc       Document
	fonts     *raster.FontRegistry
	loader    ImageLoader
	generator *Generator
}

func NewSession(fonts *raster.FontRegistry, loader ImageLoader, generator *Generator) *Session {
	t := templates[DefaultTemplate]
	return &Session{
		doc: Document{
			Template:         t.Key,
			Title:            "My Awesome Video",
			Subtitle:         "You Won't Believe This!",
			TitleStyle:       t.Title,
			SubtitleStyle:    t.Subtitle,
			BackgroundPrompt: "a surprised cat",
			Overlay:          DefaultOverlay(),
		},
		fonts:     fonts,
		loader:    loader,
		generator: generator,
	}
}

func (s *Session) Document() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// SelectTemplate switches templates and resets both text styles to the
// template's defaults.
func (s *Session) SelectTemplate(key string) (Document, error) {
	t, err := LookupTemplate(key)
	if err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Template = t.Key
	s.doc.TitleStyle = t.Title
	s.doc.SubtitleStyle = t.Subtitle
	return s.doc, nil
}

// Update applies patch after validating any styles it carries.
func (s *Session) Update(patch Patch) (Document, error) {
	if patch.TitleStyle != nil {
		if err := patch.TitleStyle.Validate(); err != nil {
			return Document{}, err
		}
	}
	if patch.SubtitleStyle != nil {
		if err := patch.SubtitleStyle.Validate(); err != nil {
			return Document{}, err
		}
	}
	if patch.Overlay != nil {
		if err := validateOverlay(*patch.Overlay); err != nil {
			return Document{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.Title != nil {
		s.doc.Title = *patch.Title
	}
	if patch.Subtitle != nil {
		s.doc.Subtitle = *patch.Subtitle
	}
	if patch.TitleStyle != nil {
		s.doc.TitleStyle = *patch.TitleStyle
	}
	if patch.SubtitleStyle != nil {
		s.doc.SubtitleStyle = *patch.SubtitleStyle
	}
	if patch.BackgroundPrompt != nil {
		s.doc.BackgroundPrompt = *patch.BackgroundPrompt
	}
	if patch.Background != nil {
		s.doc.Background = *patch.Background
	}
	if patch.Overlay != nil {
		s.doc.Overlay = *patch.Overlay
	}
	return s.doc, nil
}

func validateOverlay(o Overlay) error {
	if o.Size <= 0 || o.Opacity < 0 || o.Opacity > 1 {
		return errors.New("overlay size must be positive and opacity between 0 and 1")
	}
	return nil
}

// GenerateBackground generates a background for prompt, or for the saved
// background prompt when prompt is empty, and makes it current.
func (s *Session) GenerateBackground(ctx context.Context, prompt string) (Document, error) {
	s.mu.RLock()
	key := s.doc.Template
	if strings.TrimSpace(prompt) == "" {
		prompt = s.doc.BackgroundPrompt
	}
	s.mu.RUnlock()
	if strings.TrimSpace(prompt) == "" {
		return Document{}, errors.New("background prompt is required")
	}

	t, err := LookupTemplate(key)
	if err != nil {
		return Document{}, err
	}
	src, err := s.generator.GenerateBackground(ctx, t, prompt)
	if err != nil {
		return Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.BackgroundPrompt = prompt
	s.doc.Background = src
	return s.doc, nil
}

// Layout computes the text layout the export will use.
func (s *Session) Layout() (*Layout, error) {
	return ComputeLayout(raster.NewImageCanvas(1, 1, s.fonts), s.Document())
}

func (s *Session) ExportPNG(ctx context.Context) ([]byte, error) {
	return RenderPNG(ctx, s.fonts, s.loader, s.Document())
}
