package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func newTestCanvas(t *testing.T, w, h int) *ImageCanvas {
	t.Helper()
	fonts, err := NewFontRegistry()
	if err != nil {
		t.Fatalf("Failed to create font registry: %v", err)
	}
	return NewImageCanvas(w, h, fonts)
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDrawImageStretchesWithAlpha(t *testing.T) {
	canvas := newTestCanvas(t, 40, 20)
	red := solidImage(4, 4, color.RGBA{R: 255, A: 255})
	canvas.DrawImage(red, red.Bounds(), image.Rect(0, 0, 40, 20))

	if got := canvas.Image().RGBAAt(39, 19); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("Expected stretched red at the far corner, got %v", got)
	}

	blue := solidImage(2, 2, color.RGBA{B: 255, A: 255})
	canvas.SetAlpha(0.5)
	canvas.DrawImage(blue, blue.Bounds(), image.Rect(0, 0, 40, 20))
	got := canvas.Image().RGBAAt(20, 10)
	if got.R < 120 || got.R > 135 || got.B < 120 || got.B > 135 {
		t.Errorf("Expected an even red and blue mix, got %v", got)
	}

	canvas.SetAlpha(0)
	canvas.DrawImage(solidImage(2, 2, color.White), image.Rect(0, 0, 2, 2), image.Rect(0, 0, 40, 20))
	if after := canvas.Image().RGBAAt(20, 10); after != got {
		t.Errorf("Expected zero alpha draw to leave pixels untouched, got %v", after)
	}
}

func TestMeasureTextLetterSpacing(t *testing.T) {
	canvas := newTestCanvas(t, 100, 100)
	if err := canvas.SetFont(FontSpec{Family: "Arial, sans-serif", Size: 32}); err != nil {
		t.Fatalf("Unexpected font error: %v", err)
	}
	plain := canvas.MeasureText("HELLO")

	if err := canvas.SetFont(FontSpec{Family: "Arial, sans-serif", Size: 32, LetterSpacing: 2}); err != nil {
		t.Fatalf("Unexpected font error: %v", err)
	}
	spaced := canvas.MeasureText("HELLO")

	if diff := spaced.Width - plain.Width; diff < 9.9 || diff > 10.1 {
		t.Errorf("Expected 2px after each of 5 letters, got a %.2f difference", diff)
	}
	if plain.Ascent <= 0 || plain.Descent <= 0 {
		t.Errorf("Expected positive font metrics, got %+v", plain)
	}
}

func TestFillAndStrokeText(t *testing.T) {
	canvas := newTestCanvas(t, 200, 80)
	if err := canvas.SetFont(FontSpec{Family: "Impact", Size: 48, Bold: true}); err != nil {
		t.Fatalf("Unexpected font error: %v", err)
	}

	canvas.StrokeText("II", 100, 40, AlignCenter, Solid(color.RGBA{B: 255, A: 255}), 6)
	canvas.FillText("II", 100, 40, AlignCenter, Solid(color.RGBA{R: 255, A: 255}))

	img := canvas.Image()
	var red, blue int
	for y := 0; y < 80; y++ {
		for x := 0; x < 200; x++ {
			c := img.RGBAAt(x, y)
			if c.R > 200 && c.B < 50 {
				red++
			}
			if c.B > 200 && c.R < 50 {
				blue++
			}
		}
	}
	if red == 0 {
		t.Error("Expected filled glyph pixels")
	}
	if blue == 0 {
		t.Error("Expected stroke pixels around the glyphs")
	}
	if img.RGBAAt(2, 2).A != 0 {
		t.Error("Expected the corner to stay transparent")
	}
}

func TestShadowIsClearedAfterUse(t *testing.T) {
	canvas := newTestCanvas(t, 120, 60)
	if err := canvas.SetFont(FontSpec{Size: 30}); err != nil {
		t.Fatalf("Unexpected font error: %v", err)
	}
	canvas.SetShadow(Shadow{Color: color.NRGBA{G: 255, A: 255}, OffsetX: 20, OffsetY: 0})
	canvas.FillText("I", 30, 30, AlignLeft, Solid(color.Black))
	canvas.ClearShadow()

	var green int
	for y := 0; y < 60; y++ {
		for x := 0; x < 120; x++ {
			if c := canvas.Image().RGBAAt(x, y); c.G > 200 {
				green++
			}
		}
	}
	if green == 0 {
		t.Fatal("Expected an offset shadow")
	}

	before := green
	canvas.FillText("I", 80, 30, AlignLeft, Solid(color.Black))
	green = 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 120; x++ {
			if c := canvas.Image().RGBAAt(x, y); c.G > 200 {
				green++
			}
		}
	}
	if green > before {
		t.Errorf("Expected no shadow after clearing, shadow pixels grew from %d to %d", before, green)
	}
}

func TestDecodeDataURI(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(3, 2, color.White)); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	uri := EncodeDataURI(buf.Bytes(), "image/png")

	img, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("Unexpected image bounds %v", img.Bounds())
	}

	if _, err := DecodeDataURI("blob:abc"); err != ErrNotDataURI {
		t.Errorf("Expected ErrNotDataURI, got %v", err)
	}
	if _, _, err := ParseDataURI("data:image/png;base64,@@@"); err == nil {
		t.Error("Expected error for invalid base64")
	}
	data, mime, err := ParseDataURI("data:,hello%20world")
	if err != nil || string(data) != "hello world" || mime != "text/plain" {
		t.Errorf("Unexpected plain data URI result %q %q %v", data, mime, err)
	}
}
