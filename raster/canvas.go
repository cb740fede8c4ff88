package raster

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Shadow is applied to text draws until cleared.
type Shadow struct {
	Color   color.NRGBA
	OffsetX float64
	OffsetY float64
	Blur    float64
}

type TextMetrics struct {
	Width   float64
	Ascent  float64
	Descent float64
}

// Canvas is the drawing surface the compositors render through. Text is
// positioned by its vertical middle, as with a middle text baseline.
type Canvas interface {
	Size() (width, height int)
	DrawImage(img image.Image, src, dst image.Rectangle)
	SetAlpha(alpha float64)
	SetFont(spec FontSpec) error
	MeasureText(text string) TextMetrics
	FillText(text string, x, y float64, align Align, paint image.Image)
	StrokeText(text string, x, y float64, align Align, paint image.Image, width float64)
	SetShadow(shadow Shadow)
	ClearShadow()
}

// ImageCanvas implements Canvas on an RGBA image.
type ImageCanvas struct {
	img     *image.RGBA
	fonts   *FontRegistry
	face    font.Face
	spacing float64
	alpha   float64
	shadow  *Shadow
}

func NewImageCanvas(width, height int, fonts *FontRegistry) *ImageCanvas {
	return &ImageCanvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		fonts: fonts,
		alpha: 1,
	}
}

func (c *ImageCanvas) Image() *image.RGBA {
	return c.img
}

func (c *ImageCanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// EncodePNG writes the canvas as a PNG.
func (c *ImageCanvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

// SetAlpha sets the global alpha for subsequent draws, clamped to [0, 1].
func (c *ImageCanvas) SetAlpha(alpha float64) {
	c.alpha = clamp01(alpha)
}

// DrawImage scales the src region of img into dst using the global alpha.
func (c *ImageCanvas) DrawImage(img image.Image, src, dst image.Rectangle) {
	if dst.Empty() || src.Empty() || c.alpha == 0 {
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, dst.Dx(), dst.Dy()))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, src, xdraw.Src, nil)

	if c.alpha >= 1 {
		draw.Draw(c.img, dst, scaled, image.Point{}, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(c.alpha*255 + 0.5)})
	draw.DrawMask(c.img, dst, scaled, image.Point{}, mask, image.Point{}, draw.Over)
}

func (c *ImageCanvas) SetFont(spec FontSpec) error {
	face, err := c.fonts.Face(spec)
	if err != nil {
		return err
	}
	if c.face != nil {
		c.face.Close()
	}
	c.face = face
	c.spacing = spec.LetterSpacing
	return nil
}

// MeasureText returns the advance width including letter spacing after
// every character.
func (c *ImageCanvas) MeasureText(text string) TextMetrics {
	if c.face == nil {
		return TextMetrics{}
	}
	var width fixed.Int26_6
	spacing := toFixed(c.spacing)
	prev := rune(-1)
	for _, r := range text {
		if prev >= 0 {
			width += c.face.Kern(prev, r)
		}
		advance, _ := c.face.GlyphAdvance(r)
		width += advance + spacing
		prev = r
	}
	metrics := c.face.Metrics()
	return TextMetrics{
		Width:   fromFixed(width),
		Ascent:  fromFixed(metrics.Ascent),
		Descent: fromFixed(metrics.Descent),
	}
}

func (c *ImageCanvas) SetShadow(shadow Shadow) {
	c.shadow = &shadow
}

func (c *ImageCanvas) ClearShadow() {
	c.shadow = nil
}

func (c *ImageCanvas) FillText(text string, x, y float64, align Align, paint image.Image) {
	mask, rect := c.textMask(text, x, y, align)
	if rect.Empty() {
		return
	}
	c.paintMask(mask, rect, paint)
}

func (c *ImageCanvas) StrokeText(text string, x, y float64, align Align, paint image.Image, width float64) {
	if width <= 0 {
		return
	}
	mask, rect := c.textMask(text, x, y, align)
	if rect.Empty() {
		return
	}
	radius := math.Max(width/2, 1)
	area := rect.Inset(-int(math.Ceil(radius)) - 1).Intersect(c.img.Bounds())
	c.paintMask(dilate(mask, area, radius), area, paint)
}

// textMask rasterizes text into an alpha mask the size of the canvas and
// returns the bounds of the drawn glyphs.
func (c *ImageCanvas) textMask(text string, x, y float64, align Align) (*image.Alpha, image.Rectangle) {
	bounds := c.img.Bounds()
	mask := image.NewAlpha(bounds)
	if c.face == nil || text == "" {
		return mask, image.Rectangle{}
	}

	metrics := c.MeasureText(text)
	switch align {
	case AlignCenter:
		x -= metrics.Width / 2
	case AlignRight:
		x -= metrics.Width
	}
	baseline := y + (metrics.Ascent-metrics.Descent)/2

	dot := fixed.Point26_6{X: toFixed(x), Y: toFixed(baseline)}
	spacing := toFixed(c.spacing)
	var drawn image.Rectangle
	prev := rune(-1)
	for _, r := range text {
		if prev >= 0 {
			dot.X += c.face.Kern(prev, r)
		}
		dr, glyph, glyphPoint, advance, ok := c.face.Glyph(dot, r)
		if ok && !dr.Empty() {
			draw.DrawMask(mask, dr, image.Opaque, image.Point{}, glyph, glyphPoint, draw.Over)
			drawn = drawn.Union(dr)
		}
		dot.X += advance + spacing
		prev = r
	}
	return mask, drawn.Intersect(bounds)
}

// paintMask draws the shadow for mask when one is set, then paints src
// through mask scaled by the global alpha.
func (c *ImageCanvas) paintMask(mask *image.Alpha, rect image.Rectangle, src image.Image) {
	if c.alpha == 0 {
		return
	}
	if c.shadow != nil {
		c.drawShadow(mask, rect)
	}
	scaleAlpha(mask, rect, c.alpha)
	draw.DrawMask(c.img, rect, src, rect.Min, mask, rect.Min, draw.Over)
}

func (c *ImageCanvas) drawShadow(mask *image.Alpha, rect image.Rectangle) {
	s := c.shadow
	if s.Color.A == 0 {
		return
	}
	offset := image.Pt(int(math.Round(s.OffsetX)), int(math.Round(s.OffsetY)))
	radius := blurRadius(s.Blur)
	bounds := c.img.Bounds()
	area := rect.Add(offset).Inset(-3 * radius).Intersect(bounds)
	if area.Empty() {
		return
	}

	shadow := image.NewAlpha(bounds)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			sx, sy := x-offset.X, y-offset.Y
			if !(image.Point{X: sx, Y: sy}.In(rect)) {
				continue
			}
			shadow.Pix[shadow.PixOffset(x, y)] = mask.Pix[mask.PixOffset(sx, sy)]
		}
	}
	if radius > 0 {
		for pass := 0; pass < 3; pass++ {
			boxBlur(shadow, area, radius, true)
			boxBlur(shadow, area, radius, false)
		}
	}
	scaleAlpha(shadow, area, c.alpha)
	draw.DrawMask(c.img, area, image.NewUniform(s.Color), image.Point{}, shadow, area.Min, draw.Over)
}

// blurRadius picks a box radius whose three passes approximate a gaussian
// with a standard deviation of half the blur value.
func blurRadius(blur float64) int {
	if blur <= 0 {
		return 0
	}
	sigma := blur / 2
	r := int(math.Round(math.Sqrt(sigma*sigma+0.25) - 0.5))
	if r < 1 {
		r = 1
	}
	return r
}

func boxBlur(m *image.Alpha, area image.Rectangle, r int, horizontal bool) {
	outer, inner := area.Dy(), area.Dx()
	if !horizontal {
		outer, inner = area.Dx(), area.Dy()
	}
	line := make([]int, inner)
	width := 2*r + 1
	for o := 0; o < outer; o++ {
		at := func(i int) int {
			if horizontal {
				return m.PixOffset(area.Min.X+i, area.Min.Y+o)
			}
			return m.PixOffset(area.Min.X+o, area.Min.Y+i)
		}
		for i := 0; i < inner; i++ {
			line[i] = int(m.Pix[at(i)])
		}
		sum := 0
		for i := -r; i <= r; i++ {
			if i >= 0 && i < inner {
				sum += line[i]
			}
		}
		for i := 0; i < inner; i++ {
			m.Pix[at(i)] = uint8(sum / width)
			if out := i - r; out >= 0 {
				sum -= line[out]
			}
			if in := i + r + 1; in < inner {
				sum += line[in]
			}
		}
	}
}

// dilate grows mask by radius within area.
func dilate(mask *image.Alpha, area image.Rectangle, radius float64) *image.Alpha {
	out := image.NewAlpha(mask.Rect)
	r := int(math.Ceil(radius))
	var offsets []image.Point
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if float64(dx*dx+dy*dy) <= radius*radius+0.5 {
				offsets = append(offsets, image.Pt(dx, dy))
			}
		}
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			var best uint8
			for _, o := range offsets {
				p := image.Pt(x+o.X, y+o.Y)
				if !p.In(mask.Rect) {
					continue
				}
				if v := mask.Pix[mask.PixOffset(p.X, p.Y)]; v > best {
					best = v
					if best == 255 {
						break
					}
				}
			}
			out.Pix[out.PixOffset(x, y)] = best
		}
	}
	return out
}

func scaleAlpha(m *image.Alpha, area image.Rectangle, alpha float64) {
	if alpha >= 1 {
		return
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			i := m.PixOffset(x, y)
			m.Pix[i] = uint8(float64(m.Pix[i])*alpha + 0.5)
		}
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
