package video

import (
	"fmt"
	"os"
	"path/filepath"
)

const workspacePrefix = "studio-video-"

// workspace is a scratch directory for one ffmpeg invocation.
type workspace struct {
	dir string
}

func newWorkspace() (*workspace, error) {
	dir, err := os.MkdirTemp("", workspacePrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &workspace{dir: dir}, nil
}

func (w *workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *workspace) Write(name string, data []byte) (string, error) {
	path := w.Path(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

func (w *workspace) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(w.Path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("ffmpeg did not create %s", name)
	}
	return data, err
}

func (w *workspace) Close() error {
	return os.RemoveAll(w.dir)
}
