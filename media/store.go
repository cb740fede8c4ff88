package media

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const refPrefix = "blob:"

// Blob is an in-memory media object addressed by a blob: reference.
type Blob struct {
	Data      []byte
	MimeType  string
	CreatedAt time.Time
	// Pinned blobs are referenced by the session and skipped by the sweeper.
	Pinned bool
}

// Store is the process-local equivalent of browser object URLs.
type Store struct {
	mu     sync.RWMutex
	blobs  map[string]*Blob
	now    func() time.Time
	logger *slog.Logger

	stopCleanup chan struct{}
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		blobs:  make(map[string]*Blob),
		now:    time.Now,
		logger: logger,
	}
}

// Put stores data and returns its reference.
func (s *Store) Put(data []byte, mimeType string) string {
	ref := refPrefix + uuid.NewString()
	s.mu.Lock()
	s.blobs[ref] = &Blob{Data: data, MimeType: mimeType, CreatedAt: s.now()}
	s.mu.Unlock()
	return ref
}

func (s *Store) Get(ref string) (*Blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[ref]
	return blob, ok
}

// Pin marks ref as in use so the retention sweeper keeps it.
func (s *Store) Pin(ref string, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, ok := s.blobs[ref]
	if !ok {
		return fmt.Errorf("media %s not found", ref)
	}
	blob.Pinned = pinned
	return nil
}

// Revoke releases ref. Revoking an unknown reference is a no-op.
func (s *Store) Revoke(ref string) {
	s.mu.Lock()
	delete(s.blobs, ref)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// IsRef reports whether src is a media store reference.
func IsRef(src string) bool {
	return strings.HasPrefix(src, refPrefix)
}

// StartCleanup revokes unpinned blobs older than threshold every interval
// until StopCleanup is called.
func (s *Store) StartCleanup(threshold, interval time.Duration) {
	s.mu.Lock()
	if s.stopCleanup != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stopCleanup = stop
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.performCleanup(threshold)
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	s.logger.Info("Media cleanup started",
		slog.Duration("retention", threshold),
		slog.Duration("interval", interval))
}

func (s *Store) StopCleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCleanup != nil {
		close(s.stopCleanup)
		s.stopCleanup = nil
	}
}

func (s *Store) performCleanup(threshold time.Duration) int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for ref, blob := range s.blobs {
		if blob.Pinned || now.Sub(blob.CreatedAt) <= threshold {
			continue
		}
		delete(s.blobs, ref)
		removed++
		s.logger.Debug("Revoked expired media", slog.String("ref", ref))
	}
	return removed
}
