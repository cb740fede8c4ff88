package video

import (
	"context"
	"io"
)

// Runner executes an external tool and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// FrameCapturer grabs a still frame from a clip.
type FrameCapturer interface {
	Capture(ctx context.Context, clip []byte) ([]byte, error)
}

// ClipJoiner joins clips, in order, into one MP4.
type ClipJoiner interface {
	Concat(ctx context.Context, clips [][]byte, w io.Writer) error
}

// VideoError represents a failure in one stage of video processing.
type VideoError struct {
	Stage string
	Err   error
}

func (e *VideoError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *VideoError) Unwrap() error {
	return e.Err
}
