package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var ErrInvalidTheme = errors.New("theme must be light or dark")

func ParseTheme(value string) (Theme, error) {
	switch Theme(value) {
	case ThemeLight, ThemeDark:
		return Theme(value), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, value)
}

type file struct {
	Theme Theme `json:"theme"`
}

// Store persists the user's preferences as a small JSON file. When nothing
// has been saved yet the theme comes from the fallback, which lets the CLI
// follow the terminal background.
type Store struct {
	mu       sync.Mutex
	path     string
	fallback func() Theme
}

func NewStore(path string, fallback func() Theme) *Store {
	if fallback == nil {
		fallback = func() Theme { return ThemeLight }
	}
	return &Store{path: path, fallback: fallback}
}

// Theme returns the saved theme. A missing or unreadable file yields the
// fallback.
func (s *Store) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return s.fallback()
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return s.fallback()
	}
	if _, err := ParseTheme(string(f.Theme)); err != nil {
		return s.fallback()
	}
	return f.Theme
}

func (s *Store) SetTheme(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(file{Theme: theme}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create prefs directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*.json")
	if err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to save prefs: %w", err)
	}
	return nil
}

// Toggle flips between light and dark and saves the result.
func (s *Store) Toggle() (Theme, error) {
	next := ThemeDark
	if s.Theme() == ThemeDark {
		next = ThemeLight
	}
	return next, s.SetTheme(next)
}
