package timeline

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/serisow/studio/job"
	"github.com/serisow/studio/sequence"
)

var ErrSceneNotFound = errors.New("scene not found")

// Scene is one generated clip on the timeline.
type Scene struct {
	ID          string `json:"id"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	MediaRef    string `json:"media_ref"`
	MimeType    string `json:"mime_type"`
	// Thumbnail is a JPEG data URI of a frame near the start of the clip.
	Thumbnail     string         `json:"thumbnail"`
	LastOperation *job.Operation `json:"last_operation,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Timeline is the ordered list of scenes plus the current selection.
type Timeline struct {
	mu       sync.RWMutex
	scenes   []Scene
	selected string
}

func New() *Timeline {
	return &Timeline{}
}

// Append adds scene to the end of the timeline and selects it. A scene
// without an ID gets one.
func (t *Timeline) Append(scene Scene) Scene {
	if scene.ID == "" {
		scene.ID = "scene-" + uuid.NewString()
	}
	t.mu.Lock()
	t.scenes = append(t.scenes, scene)
	t.selected = scene.ID
	t.mu.Unlock()
	return scene
}

// Replace swaps the media of scene id in place. The ID and position are kept.
// The previous version of the scene is returned so its media can be released.
func (t *Timeline) Replace(id string, update Scene) (previous Scene, current Scene, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.scenes {
		if t.scenes[i].ID != id {
			continue
		}
		previous = t.scenes[i]
		update.ID = id
		t.scenes[i] = update
		return previous, update, nil
	}
	return Scene{}, Scene{}, ErrSceneNotFound
}

// Reorder moves the scene at from to to. Equal or out of range indices are a
// no-op and report false.
func (t *Timeline) Reorder(from, to int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	reordered, moved := sequence.Move(t.scenes, from, to)
	t.scenes = reordered
	return moved
}

// Delete removes a scene, clearing the selection when it was selected.
func (t *Timeline) Delete(id string) (Scene, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, scene := range t.scenes {
		if scene.ID != id {
			continue
		}
		t.scenes = append(t.scenes[:i:i], t.scenes[i+1:]...)
		if t.selected == id {
			t.selected = ""
		}
		return scene, nil
	}
	return Scene{}, ErrSceneNotFound
}

// Clear empties the timeline when confirmed and returns the removed scenes.
// Without confirmation nothing changes.
func (t *Timeline) Clear(confirmed bool) []Scene {
	if !confirmed {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := t.scenes
	t.scenes = nil
	t.selected = ""
	return removed
}

func (t *Timeline) Select(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, scene := range t.scenes {
		if scene.ID == id {
			t.selected = id
			return nil
		}
	}
	return ErrSceneNotFound
}

func (t *Timeline) Selected() (Scene, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, scene := range t.scenes {
		if scene.ID == t.selected {
			return scene, true
		}
	}
	return Scene{}, false
}

func (t *Timeline) SelectedID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selected
}

func (t *Timeline) Get(id string) (Scene, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, scene := range t.scenes {
		if scene.ID == id {
			return scene, true
		}
	}
	return Scene{}, false
}

// Scenes returns a copy of the timeline in playback order.
func (t *Timeline) Scenes() []Scene {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Scene, len(t.scenes))
	copy(out, t.scenes)
	return out
}
