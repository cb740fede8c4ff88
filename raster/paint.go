package raster

import (
	"image"
	"image/color"
)

var infiniteBounds = image.Rect(-1<<24, -1<<24, 1<<24, 1<<24)

// Solid returns a paint that fills with a single color.
func Solid(c color.Color) image.Image {
	return image.NewUniform(c)
}

// LinearGradient is a two-stop gradient along the segment (X0,Y0)-(X1,Y1) in
// canvas coordinates. Points beyond either end take the end color. A
// zero-length segment paints the first stop.
type LinearGradient struct {
	X0, Y0, X1, Y1 float64
	From, To       color.NRGBA
}

func (g *LinearGradient) ColorModel() color.Model {
	return color.NRGBAModel
}

func (g *LinearGradient) Bounds() image.Rectangle {
	return infiniteBounds
}

func (g *LinearGradient) At(x, y int) color.Color {
	return Blend(g.From, g.To, g.Offset(float64(x)+0.5, float64(y)+0.5))
}

// Offset projects a point onto the gradient line, clamped to [0, 1].
func (g *LinearGradient) Offset(px, py float64) float64 {
	dx, dy := g.X1-g.X0, g.Y1-g.Y0
	length := dx*dx + dy*dy
	if length == 0 {
		return 0
	}
	t := ((px-g.X0)*dx + (py-g.Y0)*dy) / length
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
