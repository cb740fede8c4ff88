package layers

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"strings"

	"github.com/serisow/studio/media"
	"github.com/serisow/studio/raster"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoVisibleLayers    = errors.New("no visible layers to download")
	ErrInvalidAspectRatio = errors.New("invalid aspect ratio")
)

const MaxDimension = 1024

// Loader resolves a layer source to a decoded image.
type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// MediaSource is the read side of the media store.
type MediaSource interface {
	Get(ref string) (*media.Blob, bool)
}

// SourceLoader decodes data: URIs and blob: references.
type SourceLoader struct {
	Media MediaSource
}

func (l *SourceLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if media.IsRef(src) {
		if l.Media == nil {
			return nil, fmt.Errorf("media %s is not available", src)
		}
		blob, ok := l.Media.Get(src)
		if !ok {
			return nil, fmt.Errorf("media %s not found", src)
		}
		img, _, err := raster.Decode(blob.Data)
		return img, err
	}
	return raster.DecodeDataURI(src)
}

// FlattenResult is the composed image and the number of layers whose
// source could not be loaded.
type FlattenResult struct {
	Image  *image.RGBA
	Drawn  int
	Failed int
}

// Flatten renders the visible layers bottom to top, each stretched to the
// full frame at its own opacity. Sources are loaded concurrently; a source
// that fails to load is counted and skipped.
func (s *Stack) Flatten(ctx context.Context, width, height int, loader Loader, logger *slog.Logger) (*FlattenResult, error) {
	stack := s.Layers()
	visible := make([]Layer, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].Visible {
			visible = append(visible, stack[i])
		}
	}
	if len(visible) == 0 {
		return nil, ErrNoVisibleLayers
	}

	images := make([]image.Image, len(visible))
	g, gctx := errgroup.WithContext(ctx)
	for i, layer := range visible {
		g.Go(func() error {
			img, err := loader.Load(gctx, layer.Src)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("Failed to load image for layer",
					slog.String("layer_id", layer.ID),
					slog.String("name", layer.Name),
					slog.String("error", err.Error()))
				return nil
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	canvas := raster.NewImageCanvas(width, height, nil)
	result := &FlattenResult{Image: canvas.Image()}
	frame := image.Rect(0, 0, width, height)
	for i, layer := range visible {
		if images[i] == nil {
			result.Failed++
			continue
		}
		canvas.SetAlpha(layer.Opacity)
		canvas.DrawImage(images[i], images[i].Bounds(), frame)
		result.Drawn++
	}
	canvas.SetAlpha(1)
	return result, nil
}

// SizeForAspect returns the output size for a "W:H" ratio with the longer
// side at maxDim.
func SizeForAspect(ratio string, maxDim int) (int, int, error) {
	left, right, ok := strings.Cut(ratio, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w %q", ErrInvalidAspectRatio, ratio)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(left), 64)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("%w %q", ErrInvalidAspectRatio, ratio)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(right), 64)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("%w %q", ErrInvalidAspectRatio, ratio)
	}
	if w >= h {
		return maxDim, int(float64(maxDim) * (h / w)), nil
	}
	return int(float64(maxDim) * (w / h)), maxDim, nil
}
