package video

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanupService removes scratch workspaces left behind by interrupted
// ffmpeg runs.
type CleanupService struct {
	logger    *slog.Logger
	root      string
	retention time.Duration
	now       func() time.Time
	stop      chan struct{}
}

func NewCleanupService(logger *slog.Logger, retention time.Duration) *CleanupService {
	return &CleanupService{
		logger:    logger,
		root:      os.TempDir(),
		retention: retention,
		now:       time.Now,
	}
}

// StartCleanupSchedule begins regular cleanup of stale workspaces.
func (s *CleanupService) StartCleanupSchedule(interval time.Duration) {
	ticker := time.NewTicker(interval)
	s.stop = make(chan struct{})
	stop := s.stop

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.PerformCleanup()
			case <-stop:
				return
			}
		}
	}()

	s.logger.Info("Video workspace cleanup started",
		slog.Duration("retention", s.retention),
		slog.Duration("interval", interval))
}

func (s *CleanupService) Stop() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// PerformCleanup removes workspaces older than the retention period and
// returns how many were removed.
func (s *CleanupService) PerformCleanup() int {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.logger.Error("Error during workspace cleanup", slog.String("error", err.Error()))
		return 0
	}

	cutoff := s.now().Add(-s.retention)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), workspacePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.root, entry.Name())
		s.logger.Info("Removing stale video workspace",
			slog.String("path", path),
			slog.Time("modified_time", info.ModTime()))
		if err := os.RemoveAll(path); err != nil {
			s.logger.Error("Failed to remove workspace",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		removed++
	}
	return removed
}
