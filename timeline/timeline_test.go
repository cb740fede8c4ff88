package timeline

import (
	"errors"
	"slices"
	"testing"
)

func sceneIDs(scenes []Scene) []string {
	out := make([]string, len(scenes))
	for i, s := range scenes {
		out[i] = s.ID
	}
	return out
}

func TestAppendSelectsNewScene(t *testing.T) {
	tl := New()
	first := tl.Append(Scene{Prompt: "sunrise"})
	second := tl.Append(Scene{Prompt: "sunset"})

	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("Expected distinct generated IDs, got %q and %q", first.ID, second.ID)
	}
	if got := sceneIDs(tl.Scenes()); !slices.Equal(got, []string{first.ID, second.ID}) {
		t.Errorf("Expected scenes in append order, got %v", got)
	}
	if selected, ok := tl.Selected(); !ok || selected.ID != second.ID {
		t.Errorf("Expected the newest scene selected, got %+v", selected)
	}
}

func TestReplaceKeepsIDAndPosition(t *testing.T) {
	tl := New()
	a := tl.Append(Scene{Prompt: "a", MediaRef: "blob:a"})
	b := tl.Append(Scene{Prompt: "b", MediaRef: "blob:b"})

	previous, current, err := tl.Replace(a.ID, Scene{ID: "ignored", Prompt: "a", MediaRef: "blob:a2"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if previous.MediaRef != "blob:a" || current.ID != a.ID {
		t.Errorf("Unexpected replace result: previous %+v, current %+v", previous, current)
	}
	scenes := tl.Scenes()
	if scenes[0].ID != a.ID || scenes[0].MediaRef != "blob:a2" || scenes[1].ID != b.ID {
		t.Errorf("Expected scene replaced in place, got %+v", scenes)
	}

	if _, _, err := tl.Replace("missing", Scene{}); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("Expected ErrSceneNotFound, got %v", err)
	}
}

func TestReorderIsPermutation(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		moved    bool
		order    []int
	}{
		{name: "Equal indices", from: 2, to: 2, moved: false, order: []int{0, 1, 2, 3}},
		{name: "Out of range", from: -1, to: 2, moved: false, order: []int{0, 1, 2, 3}},
		{name: "Past the end", from: 0, to: 4, moved: false, order: []int{0, 1, 2, 3}},
		{name: "Forward", from: 0, to: 2, moved: true, order: []int{1, 2, 0, 3}},
		{name: "Backward", from: 3, to: 1, moved: true, order: []int{0, 3, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := New()
			var original []string
			for i := 0; i < 4; i++ {
				original = append(original, tl.Append(Scene{}).ID)
			}

			if moved := tl.Reorder(tt.from, tt.to); moved != tt.moved {
				t.Errorf("Expected moved=%v, got %v", tt.moved, moved)
			}
			got := sceneIDs(tl.Scenes())
			for i, idx := range tt.order {
				if got[i] != original[idx] {
					t.Fatalf("Expected order %v, got %v", tt.order, got)
				}
			}

			sortedGot := slices.Clone(got)
			slices.Sort(sortedGot)
			sortedOriginal := slices.Clone(original)
			slices.Sort(sortedOriginal)
			if !slices.Equal(sortedGot, sortedOriginal) {
				t.Errorf("Reorder is not a permutation: %v vs %v", got, original)
			}
		})
	}
}

func TestDeleteClearsSelection(t *testing.T) {
	tl := New()
	a := tl.Append(Scene{})
	b := tl.Append(Scene{})

	if _, err := tl.Delete(a.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if selected, ok := tl.Selected(); !ok || selected.ID != b.ID {
		t.Errorf("Deleting an unselected scene changed the selection")
	}
	if _, err := tl.Delete(b.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := tl.Selected(); ok {
		t.Error("Expected no selection after deleting the selected scene")
	}
	if err := tl.Select(b.ID); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("Expected ErrSceneNotFound selecting a deleted scene, got %v", err)
	}
}

func TestClearRequiresConfirmation(t *testing.T) {
	tl := New()
	tl.Append(Scene{})
	tl.Append(Scene{})

	if removed := tl.Clear(false); removed != nil || len(tl.Scenes()) != 2 {
		t.Fatalf("Expected unconfirmed clear to do nothing, removed %v", removed)
	}
	if removed := tl.Clear(true); len(removed) != 2 {
		t.Errorf("Expected 2 scenes removed, got %d", len(removed))
	}
	if removed := tl.Clear(true); len(removed) != 0 {
		t.Errorf("Expected a second clear to remove nothing, got %d", len(removed))
	}
	if len(tl.Scenes()) != 0 || tl.SelectedID() != "" {
		t.Error("Expected an empty timeline with no selection")
	}
}
