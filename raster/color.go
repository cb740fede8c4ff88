package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor reads #rgb, #rgba, #rrggbb, #rrggbbaa and "transparent".
func ParseColor(value string) (color.NRGBA, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "transparent" {
		return color.NRGBA{}, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("unsupported color %q", value)
	}

	switch len(s) {
	case 5:
		s = "#" + string([]byte{s[1], s[1], s[2], s[2], s[3], s[3], s[4], s[4]})
	case 4, 7, 9:
	default:
		return color.NRGBA{}, fmt.Errorf("unsupported color %q", value)
	}

	hex, alphaHex := s, ""
	if len(s) == 9 {
		hex, alphaHex = s[:7], s[7:]
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", value, err)
	}
	r, g, b := c.RGB255()
	alpha := uint64(255)
	if alphaHex != "" {
		alpha, err = strconv.ParseUint(alphaHex, 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in color %q: %w", value, err)
		}
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha)}, nil
}

// Blend interpolates from a to b at t in [0, 1].
func Blend(a, b color.NRGBA, t float64) color.NRGBA {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	alpha := float64(a.A) + (float64(b.A)-float64(a.A))*t
	return color.NRGBA{R: r, G: g, B: bl, A: uint8(alpha + 0.5)}
}
