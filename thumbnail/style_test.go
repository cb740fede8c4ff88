package thumbnail

import (
	"strings"
	"testing"

	"github.com/serisow/studio/raster"
)

func TestTemplatesAreValid(t *testing.T) {
	if len(Templates()) != 6 {
		t.Fatalf("Expected 6 templates, got %d", len(Templates()))
	}
	for _, tmpl := range Templates() {
		if err := tmpl.Title.Validate(); err != nil {
			t.Errorf("%s title style: %v", tmpl.Key, err)
		}
		if err := tmpl.Subtitle.Validate(); err != nil {
			t.Errorf("%s subtitle style: %v", tmpl.Key, err)
		}
		if prompt := tmpl.EnhancePrompt("a surprised cat"); !strings.Contains(prompt, `"a surprised cat"`) {
			t.Errorf("%s enhancer dropped the subject: %s", tmpl.Key, prompt)
		}
	}
	if _, err := LookupTemplate("vaporwave"); err == nil {
		t.Error("Expected an unknown template error")
	}
}

func TestTextStyleValidate(t *testing.T) {
	base := templates["gaming"].Title
	tests := []struct {
		name   string
		mutate func(s *TextStyle)
		valid  bool
	}{
		{name: "Template style", mutate: func(s *TextStyle) {}, valid: true},
		{name: "Unknown fill", mutate: func(s *TextStyle) { s.FillType = "pattern" }},
		{name: "Gradient without direction", mutate: func(s *TextStyle) { s.GradientDirection = "" }},
		{name: "Solid ignores direction", mutate: func(s *TextStyle) { s.FillType = FillSolid; s.GradientDirection = "" }, valid: true},
		{name: "Bad gradient color", mutate: func(s *TextStyle) { s.GradientColors[1] = "neon" }},
		{name: "Bad stroke color", mutate: func(s *TextStyle) { s.StrokeColor = "#12" }},
		{name: "Stroke color unused", mutate: func(s *TextStyle) { s.StrokeWidth = 0; s.StrokeColor = "" }, valid: true},
		{name: "Zero font size", mutate: func(s *TextStyle) { s.FontSize = 0 }},
		{name: "Bad alignment", mutate: func(s *TextStyle) { s.TextAlign = raster.Align("justify") }},
		{name: "Bad shadow color", mutate: func(s *TextStyle) { s.Shadow.Color = "shadowy" }},
		{name: "Capitalize", mutate: func(s *TextStyle) { s.TextTransform = "capitalize" }, valid: true},
		{name: "Bad transform", mutate: func(s *TextStyle) { s.TextTransform = "small-caps" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := base
			tt.mutate(&style)
			err := style.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid style, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}

func TestFontWeightSelectsBold(t *testing.T) {
	tests := []struct {
		weight string
		bold   bool
	}{
		{"bold", true},
		{"bolder", true},
		{"700", true},
		{"900", true},
		{"600", true},
		{"500", false},
		{"400", false},
		{"normal", false},
		{"", false},
	}
	for _, tt := range tests {
		style := templates["minimalist"].Title
		style.FontWeight = tt.weight
		if got := style.fontSpec().Bold; got != tt.bold {
			t.Errorf("weight %q: expected bold %v, got %v", tt.weight, tt.bold, got)
		}
	}
}
