package video

import (
	"context"
	"errors"
	"log/slog"
)

// CaptureOffset skips the first frame, which is often black.
const CaptureOffset = "0.1"

// Thumbnailer captures a JPEG frame near the start of a clip.
type Thumbnailer struct {
	runner Runner
	tools  Tools
	logger *slog.Logger
}

func NewThumbnailer(runner Runner, tools Tools, logger *slog.Logger) *Thumbnailer {
	return &Thumbnailer{runner: runner, tools: tools, logger: logger}
}

func (t *Thumbnailer) Capture(ctx context.Context, clip []byte) ([]byte, error) {
	if len(clip) == 0 {
		return nil, &VideoError{Stage: "thumbnail", Err: errors.New("clip is empty")}
	}

	ws, err := newWorkspace()
	if err != nil {
		return nil, &VideoError{Stage: "thumbnail", Err: err}
	}
	defer ws.Close()

	input, err := ws.Write("clip.mp4", clip)
	if err != nil {
		return nil, &VideoError{Stage: "thumbnail", Err: err}
	}

	args := []string{
		"-ss", CaptureOffset,
		"-i", input,
		"-frames:v", "1",
		"-q:v", "3",
		"-f", "image2",
		"-y", ws.Path("frame.jpg"),
	}
	if _, err := t.runner.Run(ctx, t.tools.FFmpeg, args...); err != nil {
		return nil, &VideoError{Stage: "thumbnail", Err: err}
	}

	frame, err := ws.Read("frame.jpg")
	if err != nil {
		return nil, &VideoError{Stage: "thumbnail", Err: err}
	}
	t.logger.Debug("Captured thumbnail frame", slog.Int("bytes", len(frame)))
	return frame, nil
}
