package thumbnail

import (
	"errors"
	"fmt"

	"github.com/serisow/studio/raster"
)

var ErrUnknownTemplate = errors.New("unknown thumbnail template")

// Template is a starting point for a thumbnail: a background prompt
// enhancer and default styles for both text blocks.
type Template struct {
	Key      string    `json:"key"`
	Name     string    `json:"name"`
	Title    TextStyle `json:"title_style"`
	Subtitle TextStyle `json:"subtitle_style"`

	enhance string
}

// EnhancePrompt wraps the user's subject in the template's art direction.
func (t Template) EnhancePrompt(prompt string) string {
	return fmt.Sprintf(t.enhance, prompt)
}

const DefaultTemplate = "bold"

// TemplateOrder is the order templates are offered in.
var TemplateOrder = []string{"minimalist", "bold", "gaming", "modern", "retro", "abstract"}

func LookupTemplate(key string) (Template, error) {
	t, ok := templates[key]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, key)
	}
	return t, nil
}

func Templates() []Template {
	out := make([]Template, 0, len(TemplateOrder))
	for _, key := range TemplateOrder {
		out = append(out, templates[key])
	}
	return out
}

func shadow(enabled bool, color string, x, y, blur float64) ShadowStyle {
	return ShadowStyle{Enabled: enabled, Color: color, OffsetX: x, OffsetY: y, Blur: blur}
}

var templates = map[string]Template{
	"minimalist": {
		Key:     "minimalist",
		Name:    "Minimalist",
		enhance: `Clean, minimalist YouTube thumbnail background for a video about "%s". Soft, simple colors, elegant, lots of negative space.`,
		Title: TextStyle{
			FontFamily: "Arial, sans-serif", FontSize: 64, FontWeight: "bold", FontStyle: "normal", LetterSpacing: 0,
			TextAlign: raster.AlignCenter, StrokeColor: "#FFFFFF", StrokeWidth: 2, TextTransform: "none",
			FillType: FillSolid, Color: "#111111", GradientColors: [2]string{"#111111", "#555555"}, GradientDirection: ToRight,
			Shadow: shadow(false, "#00000080", 2, 2, 4),
		},
		Subtitle: TextStyle{
			FontFamily: "Arial, sans-serif", FontSize: 32, FontWeight: "normal", FontStyle: "normal", LetterSpacing: 1,
			TextAlign: raster.AlignCenter, StrokeColor: "#FFFFFF", StrokeWidth: 1, TextTransform: "none",
			FillType: FillSolid, Color: "#333333", GradientColors: [2]string{"#333333", "#666666"}, GradientDirection: ToRight,
			Shadow: shadow(false, "#00000080", 1, 1, 2),
		},
	},
	"bold": {
		Key:     "bold",
		Name:    "Bold & Punchy",
		enhance: `Bold, high-contrast, eye-catching YouTube thumbnail background for a video about "%s". Vibrant, saturated colors. Dynamic shapes and lines.`,
		Title: TextStyle{
			FontFamily: "Impact, sans-serif", FontSize: 80, FontWeight: "bold", FontStyle: "normal", LetterSpacing: 2,
			TextAlign: raster.AlignCenter, StrokeColor: "#000000", StrokeWidth: 4, TextTransform: "uppercase",
			FillType: FillSolid, Color: "#FFFF00", GradientColors: [2]string{"#FFFF00", "#FFD700"}, GradientDirection: ToBottom,
			Shadow: shadow(true, "#000000", 5, 5, 0),
		},
		Subtitle: TextStyle{
			FontFamily: "Impact, sans-serif", FontSize: 40, FontWeight: "normal", FontStyle: "normal", LetterSpacing: 2,
			TextAlign: raster.AlignCenter, StrokeColor: "#000000", StrokeWidth: 0, TextTransform: "uppercase",
			BackgroundColor: "#e63946", Padding: "5px 10px",
			FillType: FillSolid, Color: "#FFFFFF", GradientColors: [2]string{"#FFFFFF", "#DDDDDD"}, GradientDirection: ToRight,
			Shadow: shadow(false, "#000000", 2, 2, 3),
		},
	},
	"gaming": {
		Key:     "gaming",
		Name:    "Gaming",
		enhance: `Epic, high-energy gaming YouTube thumbnail background for a video about "%s". Neon lights, futuristic elements, dramatic lighting, particle effects.`,
		Title: TextStyle{
			FontFamily: "Verdana, sans-serif", FontSize: 72, FontWeight: "bold", FontStyle: "italic", LetterSpacing: 1,
			TextAlign: raster.AlignCenter, StrokeColor: "#000000", StrokeWidth: 3, TextTransform: "none",
			FillType: FillGradient, Color: "#00FF00", GradientColors: [2]string{"#00FF00", "#00FFFF"}, GradientDirection: ToBottomRight,
			Shadow: shadow(true, "#000000", 0, 0, 15),
		},
		Subtitle: TextStyle{
			FontFamily: "Verdana, sans-serif", FontSize: 36, FontWeight: "normal", FontStyle: "normal", LetterSpacing: 1,
			TextAlign: raster.AlignCenter, StrokeColor: "#000000", StrokeWidth: 2, TextTransform: "none",
			FillType: FillSolid, Color: "#FF00FF", GradientColors: [2]string{"#FF00FF", "#FF0088"}, GradientDirection: ToRight,
			Shadow: shadow(true, "#FF00FF", 0, 0, 10),
		},
	},
	"modern": {
		Key:     "modern",
		Name:    "Modern & Clean",
		enhance: `Clean, modern, professional YouTube thumbnail background for a video about "%s". Geometric shapes, sans-serif fonts, a sophisticated color palette.`,
		Title: TextStyle{
			FontFamily: "Arial, sans-serif", FontSize: 72, FontWeight: "bold", FontStyle: "normal", LetterSpacing: 1,
			TextAlign: raster.AlignLeft, StrokeColor: "#FFFFFF", StrokeWidth: 0, TextTransform: "uppercase",
			FillType: FillSolid, Color: "#0A0A0A", GradientColors: [2]string{"#111111", "#555555"}, GradientDirection: ToRight,
			Shadow: shadow(true, "#00000030", 0, 4, 10),
		},
		Subtitle: TextStyle{
			FontFamily: "Arial, sans-serif", FontSize: 36, FontWeight: "normal", FontStyle: "normal", LetterSpacing: 2,
			TextAlign: raster.AlignLeft, StrokeColor: "#FFFFFF", StrokeWidth: 0, TextTransform: "uppercase",
			FillType: FillSolid, Color: "#666666", GradientColors: [2]string{"#333333", "#666666"}, GradientDirection: ToRight,
			Shadow: shadow(false, "#00000080", 1, 1, 2),
		},
	},
	"retro": {
		Key:     "retro",
		Name:    "Retro Wave",
		enhance: `80s retro, synthwave style YouTube thumbnail background for a video about "%s". Neon grid lines, vibrant pinks and blues, a setting sun over a digital landscape.`,
		Title: TextStyle{
			FontFamily: "Bangers, cursive", FontSize: 84, FontWeight: "normal", FontStyle: "normal", LetterSpacing: 2,
			TextAlign: raster.AlignCenter, StrokeColor: "#FF00FF", StrokeWidth: 3, TextTransform: "none",
			FillType: FillGradient, Color: "#FFFFFF", GradientColors: [2]string{"#FFFF00", "#FF8C00"}, GradientDirection: ToBottom,
			Shadow: shadow(true, "#FF00FF", 0, 0, 20),
		},
		Subtitle: TextStyle{
			FontFamily: "Courier New, monospace", FontSize: 40, FontWeight: "bold", FontStyle: "normal", LetterSpacing: 1,
			TextAlign: raster.AlignCenter, StrokeColor: "#000000", StrokeWidth: 0, TextTransform: "uppercase",
			FillType: FillSolid, Color: "#00FFFF", GradientColors: [2]string{"#FFFFFF", "#DDDDDD"}, GradientDirection: ToRight,
			Shadow: shadow(true, "#00FFFF", 0, 0, 10),
		},
	},
	"abstract": {
		Key:     "abstract",
		Name:    "Abstract Art",
		enhance: `Abstract, artistic YouTube thumbnail background for a video about "%s". A mix of paint strokes, textures, and fluid shapes. Unconventional color combinations.`,
		Title: TextStyle{
			FontFamily: "Lobster, cursive", FontSize: 78, FontWeight: "normal", FontStyle: "italic", LetterSpacing: 0,
			TextAlign: raster.AlignRight, StrokeColor: "#FFFFFF", StrokeWidth: 2, TextTransform: "none",
			FillType: FillSolid, Color: "#FFFFFF", GradientColors: [2]string{"#FFFFFF", "#EEEEEE"}, GradientDirection: ToBottom,
			Shadow: shadow(true, "#00000080", 3, 3, 5),
		},
		Subtitle: TextStyle{
			FontFamily: "Georgia, serif", FontSize: 34, FontWeight: "normal", FontStyle: "normal", LetterSpacing: 1,
			TextAlign: raster.AlignRight, StrokeColor: "#000000", StrokeWidth: 0, TextTransform: "none",
			FillType: FillSolid, Color: "#EFEFEF", GradientColors: [2]string{"#333333", "#666666"}, GradientDirection: ToRight,
			Shadow: shadow(false, "#00000080", 1, 1, 2),
		},
	},
}
