package thumbnail

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/serisow/studio/raster"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type FillType string

const (
	FillSolid    FillType = "solid"
	FillGradient FillType = "gradient"
)

type GradientDirection string

const (
	ToRight       GradientDirection = "to right"
	ToBottom      GradientDirection = "to bottom"
	ToBottomRight GradientDirection = "to bottom right"
	ToBottomLeft  GradientDirection = "to bottom left"
)

type ShadowStyle struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Blur    float64 `json:"blur"`
}

// TextStyle describes how a title or subtitle is drawn. FontSize and
// LetterSpacing are in pixels of the 1280x720 frame.
type TextStyle struct {
	FontFamily    string       `json:"font_family"`
	FontSize      float64      `json:"font_size"`
	FontWeight    string       `json:"font_weight"`
	FontStyle     string       `json:"font_style"`
	LetterSpacing float64      `json:"letter_spacing"`
	TextAlign     raster.Align `json:"text_align"`
	StrokeColor   string       `json:"stroke_color"`
	StrokeWidth   float64      `json:"stroke_width"`
	TextTransform string       `json:"text_transform"`
	// BackgroundColor and Padding only affect the live preview.
	BackgroundColor   string            `json:"background_color,omitempty"`
	Padding           string            `json:"padding,omitempty"`
	FillType          FillType          `json:"fill_type"`
	Color             string            `json:"color"`
	GradientColors    [2]string         `json:"gradient_colors"`
	GradientDirection GradientDirection `json:"gradient_direction"`
	Shadow            ShadowStyle       `json:"shadow"`
}

// Validate checks that exactly one fill mode is configured and that every
// color the renderer will use parses. The gradient direction is only
// required for gradient fills.
func (s TextStyle) Validate() error {
	if s.FontSize <= 0 {
		return fmt.Errorf("font size must be positive, got %v", s.FontSize)
	}
	if s.StrokeWidth < 0 {
		return fmt.Errorf("stroke width must not be negative, got %v", s.StrokeWidth)
	}
	switch s.TextAlign {
	case raster.AlignLeft, raster.AlignCenter, raster.AlignRight:
	default:
		return fmt.Errorf("invalid text align %q", s.TextAlign)
	}

	switch s.TextTransform {
	case "", "none", "uppercase", "lowercase", "capitalize":
	default:
		return fmt.Errorf("invalid text transform %q", s.TextTransform)
	}

	switch s.FillType {
	case FillSolid:
		if _, err := raster.ParseColor(s.Color); err != nil {
			return fmt.Errorf("invalid fill color: %w", err)
		}
	case FillGradient:
		for _, c := range s.GradientColors {
			if _, err := raster.ParseColor(c); err != nil {
				return fmt.Errorf("invalid gradient color: %w", err)
			}
		}
		if !validDirection(s.GradientDirection) {
			return fmt.Errorf("invalid gradient direction %q", s.GradientDirection)
		}
	default:
		return fmt.Errorf("invalid fill type %q", s.FillType)
	}

	if s.StrokeWidth > 0 {
		if _, err := raster.ParseColor(s.StrokeColor); err != nil {
			return fmt.Errorf("invalid stroke color: %w", err)
		}
	}
	if s.Shadow.Enabled {
		if _, err := raster.ParseColor(s.Shadow.Color); err != nil {
			return fmt.Errorf("invalid shadow color: %w", err)
		}
	}
	return nil
}

func validDirection(d GradientDirection) bool {
	switch d {
	case ToRight, ToBottom, ToBottomRight, ToBottomLeft:
		return true
	}
	return false
}

func (s TextStyle) fontSpec() raster.FontSpec {
	return raster.FontSpec{
		Family:        s.FontFamily,
		Size:          s.FontSize,
		Bold:          boldWeight(s.FontWeight),
		Italic:        s.FontStyle == "italic",
		LetterSpacing: s.LetterSpacing,
	}
}

// boldWeight reports whether a CSS font-weight selects the bold face.
// Numeric weights of 600 and above count as bold.
func boldWeight(weight string) bool {
	switch weight {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(strings.TrimSpace(weight))
	return err == nil && n >= 600
}

// transform applies the CSS text-transform of the style.
func (s TextStyle) transform(text string) string {
	switch s.TextTransform {
	case "uppercase":
		return cases.Upper(language.Und).String(text)
	case "lowercase":
		return cases.Lower(language.Und).String(text)
	case "capitalize":
		return cases.Title(language.Und, cases.NoLower).String(text)
	}
	return text
}

func (s TextStyle) lineHeight() float64 {
	return s.FontSize * lineHeightFactor
}
