package media

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestStore() *Store {
	return NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStorePutGetRevoke(t *testing.T) {
	store := newTestStore()

	ref := store.Put([]byte("frame"), "video/mp4")
	if !strings.HasPrefix(ref, "blob:") || !IsRef(ref) {
		t.Fatalf("Expected blob reference, got %s", ref)
	}
	blob, ok := store.Get(ref)
	if !ok || string(blob.Data) != "frame" || blob.MimeType != "video/mp4" {
		t.Fatalf("Unexpected blob: %+v", blob)
	}

	store.Revoke(ref)
	store.Revoke(ref)
	if _, ok := store.Get(ref); ok {
		t.Error("Expected blob to be gone after revoke")
	}
	if store.Len() != 0 {
		t.Errorf("Expected empty store, got %d", store.Len())
	}
}

func TestPerformCleanupKeepsPinnedAndFresh(t *testing.T) {
	store := newTestStore()
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	old := store.Put([]byte("old"), "video/mp4")
	pinned := store.Put([]byte("pinned"), "video/mp4")
	if err := store.Pin(pinned, true); err != nil {
		t.Fatalf("Unexpected pin error: %v", err)
	}

	current = current.Add(2 * time.Hour)
	fresh := store.Put([]byte("fresh"), "image/jpeg")

	if removed := store.performCleanup(time.Hour); removed != 1 {
		t.Errorf("Expected one blob removed, got %d", removed)
	}
	if _, ok := store.Get(old); ok {
		t.Error("Expected expired blob to be revoked")
	}
	for _, ref := range []string{pinned, fresh} {
		if _, ok := store.Get(ref); !ok {
			t.Errorf("Expected %s to survive cleanup", ref)
		}
	}

	if err := store.Pin("blob:missing", true); err == nil {
		t.Error("Expected error pinning unknown media")
	}
}

func TestConcurrentPutsWithCleanup(t *testing.T) {
	store := newTestStore()
	store.StartCleanup(time.Hour, 5*time.Millisecond)
	defer store.StopCleanup()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref := store.Put([]byte("x"), "video/mp4")
			store.Get(ref)
		}()
	}
	wg.Wait()
	time.Sleep(20 * time.Millisecond)

	if store.Len() != 200 {
		t.Errorf("Expected fresh blobs to survive cleanup, got %d", store.Len())
	}
}
