package layers

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/serisow/studio/sequence"
)

var ErrLayerNotFound = errors.New("layer not found")

// Layer is one image in the composition. Storage order is top to bottom.
type Layer struct {
	ID      string  `json:"id"`
	Src     string  `json:"src"`
	Name    string  `json:"name"`
	Opacity float64 `json:"opacity"`
	Visible bool    `json:"is_visible"`
}

// Patch holds the optional fields of an update.
type Patch struct {
	Name    *string  `json:"name,omitempty"`
	Src     *string  `json:"src,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Visible *bool    `json:"is_visible,omitempty"`
}

type Stack struct {
	mu     sync.RWMutex
	layers []Layer
}

func NewStack() *Stack {
	return &Stack{}
}

// AddGenerated puts a generated image on top of the stack.
func (s *Stack) AddGenerated(src, prompt string) Layer {
	return s.prepend(src, fmt.Sprintf("Generated: %s...", truncate(prompt, 20)))
}

// AddUploaded puts an uploaded image on top of the stack.
func (s *Stack) AddUploaded(src, filename string) Layer {
	return s.prepend(src, "Uploaded: "+filename)
}

func (s *Stack) prepend(src, name string) Layer {
	layer := Layer{
		ID:      "layer-" + uuid.NewString(),
		Src:     src,
		Name:    name,
		Opacity: 1,
		Visible: true,
	}
	s.mu.Lock()
	s.layers = append([]Layer{layer}, s.layers...)
	s.mu.Unlock()
	return layer
}

// Update merges the set fields of patch into the layer. Opacity is clamped
// to [0, 1].
func (s *Stack) Update(id string, patch Patch) (Layer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.layers {
		if s.layers[i].ID != id {
			continue
		}
		layer := &s.layers[i]
		if patch.Name != nil {
			layer.Name = *patch.Name
		}
		if patch.Src != nil {
			layer.Src = *patch.Src
		}
		if patch.Opacity != nil {
			layer.Opacity = clampOpacity(*patch.Opacity)
		}
		if patch.Visible != nil {
			layer.Visible = *patch.Visible
		}
		return *layer, nil
	}
	return Layer{}, ErrLayerNotFound
}

func (s *Stack) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, layer := range s.layers {
		if layer.ID == id {
			s.layers = append(s.layers[:i:i], s.layers[i+1:]...)
			return nil
		}
	}
	return ErrLayerNotFound
}

// Reorder moves the layer at from to to. Equal or out of range indices are a
// no-op and report false.
func (s *Stack) Reorder(from, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	reordered, moved := sequence.Move(s.layers, from, to)
	s.layers = reordered
	return moved
}

// Layers returns a copy of the stack, top first.
func (s *Stack) Layers() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

func (s *Stack) Get(id string) (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, layer := range s.layers {
		if layer.ID == id {
			return layer, true
		}
	}
	return Layer{}, false
}

func clampOpacity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
