package credentials

import (
	"errors"
	"strings"
	"sync"
)

// ErrCredentialRequired is returned when a remote call needs an API key and
// none is active. The user has to select one before retrying.
var ErrCredentialRequired = errors.New("an API key must be selected before calling the generation service")

// Store holds the API key the generation client uses. It is created once at
// startup and shared by reference; selecting a key makes it visible to every
// subsequent call.
type Store struct {
	mu  sync.RWMutex
	key string
}

func NewStore(initial string) *Store {
	return &Store{key: strings.TrimSpace(initial)}
}

// Select activates key. An empty key is rejected.
func (s *Store) Select(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("api key is empty")
	}
	s.mu.Lock()
	s.key = key
	s.mu.Unlock()
	return nil
}

// Invalidate drops the active key after the service reported it unusable.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.key = ""
	s.mu.Unlock()
}

func (s *Store) Ready() bool {
	return s.Key() != ""
}

func (s *Store) Key() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

// Require returns the active key or ErrCredentialRequired.
func (s *Store) Require() (string, error) {
	key := s.Key()
	if key == "" {
		return "", ErrCredentialRequired
	}
	return key, nil
}
