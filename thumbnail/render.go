package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/serisow/studio/raster"
)

var ErrNoBackground = errors.New("a background image is required to export the thumbnail")

// ImageLoader resolves a data URI or media reference to an image.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// Overlay is an optional image placed over the background. Size, X and Y
// are percentages of the frame; Opacity is 0..1.
type Overlay struct {
	Src     string  `json:"src"`
	Size    float64 `json:"size"`
	Opacity float64 `json:"opacity"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

func DefaultOverlay() Overlay {
	return Overlay{Size: 50, Opacity: 1, X: 50, Y: 80}
}

// Document is everything needed to render a thumbnail.
type Document struct {
	Template         string    `json:"template"`
	Title            string    `json:"title"`
	Subtitle         string    `json:"subtitle"`
	TitleStyle       TextStyle `json:"title_style"`
	SubtitleStyle    TextStyle `json:"subtitle_style"`
	BackgroundPrompt string    `json:"background_prompt"`
	Background       string    `json:"background,omitempty"`
	Overlay          Overlay   `json:"overlay"`
}

// Render draws doc onto canvas: background, overlay, title, subtitle.
func Render(ctx context.Context, canvas raster.Canvas, loader ImageLoader, doc Document) error {
	if doc.Background == "" {
		return ErrNoBackground
	}
	w, h := canvas.Size()
	frame := image.Rect(0, 0, w, h)

	bg, err := loader.Load(ctx, doc.Background)
	if err != nil {
		return fmt.Errorf("failed to load background: %w", err)
	}
	canvas.SetAlpha(1)
	canvas.DrawImage(bg, coverRect(bg.Bounds(), w, h), frame)

	if doc.Overlay.Src != "" {
		overlay, err := loader.Load(ctx, doc.Overlay.Src)
		if err != nil {
			return fmt.Errorf("failed to load overlay: %w", err)
		}
		b := overlay.Bounds()
		box := PlaceOverlay(doc.Overlay, b.Dx(), b.Dy(), w, h)
		dst := image.Rect(
			int(math.Round(box.X)), int(math.Round(box.Y)),
			int(math.Round(box.X+box.Width)), int(math.Round(box.Y+box.Height)),
		)
		canvas.SetAlpha(box.Opacity)
		canvas.DrawImage(overlay, b, dst)
		canvas.SetAlpha(1)
	}

	title, err := LayoutBlock(canvas, doc.Title, doc.TitleStyle, titleCenter, w, h)
	if err != nil {
		return err
	}
	if err := drawBlock(canvas, title, doc.TitleStyle); err != nil {
		return err
	}

	subtitle, err := LayoutBlock(canvas, doc.Subtitle, doc.SubtitleStyle, subtitleCenter, w, h)
	if err != nil {
		return err
	}
	return drawBlock(canvas, subtitle, doc.SubtitleStyle)
}

// drawBlock expects the block's font to be current on the canvas.
func drawBlock(canvas raster.Canvas, block Block, style TextStyle) error {
	if style.Shadow.Enabled {
		c, err := raster.ParseColor(style.Shadow.Color)
		if err != nil {
			return fmt.Errorf("invalid shadow color: %w", err)
		}
		canvas.SetShadow(raster.Shadow{
			Color:   c,
			OffsetX: style.Shadow.OffsetX,
			OffsetY: style.Shadow.OffsetY,
			Blur:    style.Shadow.Blur,
		})
	}
	defer canvas.ClearShadow()

	var stroke image.Image
	if style.StrokeWidth > 0 {
		c, err := raster.ParseColor(style.StrokeColor)
		if err != nil {
			return fmt.Errorf("invalid stroke color: %w", err)
		}
		stroke = raster.Solid(c)
	}

	for _, line := range block.Lines {
		if line.Text == "" {
			continue
		}
		paint, err := linePaint(line, style)
		if err != nil {
			return err
		}
		if stroke != nil {
			canvas.StrokeText(line.Text, block.X, line.Y, block.Align, stroke, style.StrokeWidth)
		}
		canvas.FillText(line.Text, block.X, line.Y, block.Align, paint)
	}
	return nil
}

func linePaint(line Line, style TextStyle) (image.Image, error) {
	if style.FillType != FillGradient {
		c, err := raster.ParseColor(style.Color)
		if err != nil {
			return nil, fmt.Errorf("invalid fill color: %w", err)
		}
		return raster.Solid(c), nil
	}

	from, err := raster.ParseColor(style.GradientColors[0])
	if err != nil {
		return nil, fmt.Errorf("invalid gradient color: %w", err)
	}
	to, err := raster.ParseColor(style.GradientColors[1])
	if err != nil {
		return nil, fmt.Errorf("invalid gradient color: %w", err)
	}
	x0, y0, x1, y1 := line.Gradient(style.GradientDirection)
	return &raster.LinearGradient{X0: x0, Y0: y0, X1: x1, Y1: y1, From: from, To: to}, nil
}

// coverRect returns the centered part of src with the frame's aspect ratio,
// so drawing it to the full frame scales uniformly and crops the overflow.
func coverRect(src image.Rectangle, w, h int) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 || w == 0 || h == 0 {
		return src
	}
	if sw*h > sh*w {
		cw := sh * w / h
		x0 := src.Min.X + (sw-cw)/2
		return image.Rect(x0, src.Min.Y, x0+cw, src.Max.Y)
	}
	ch := sw * h / w
	y0 := src.Min.Y + (sh-ch)/2
	return image.Rect(src.Min.X, y0, src.Max.X, y0+ch)
}

// RenderPNG renders doc on a fresh 1280x720 canvas and encodes it as PNG.
func RenderPNG(ctx context.Context, fonts *raster.FontRegistry, loader ImageLoader, doc Document) ([]byte, error) {
	canvas := raster.NewImageCanvas(Width, Height, fonts)
	if err := Render(ctx, canvas, loader, doc); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := canvas.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
