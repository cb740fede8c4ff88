package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Exporter joins timeline clips with ffmpeg's concat demuxer.
type Exporter struct {
	runner Runner
	tools  Tools
	logger *slog.Logger
}

func NewExporter(runner Runner, tools Tools, logger *slog.Logger) *Exporter {
	return &Exporter{runner: runner, tools: tools, logger: logger}
}

func (e *Exporter) Concat(ctx context.Context, clips [][]byte, w io.Writer) error {
	if len(clips) == 0 {
		return &VideoError{Stage: "export", Err: errors.New("no clips to export")}
	}

	ws, err := newWorkspace()
	if err != nil {
		return &VideoError{Stage: "export", Err: err}
	}
	defer ws.Close()

	paths := make([]string, len(clips))
	g, gctx := errgroup.WithContext(ctx)
	for i, clip := range clips {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := ws.Write(fmt.Sprintf("clip-%03d.mp4", i), clip)
			paths[i] = path
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return &VideoError{Stage: "export", Err: err}
	}

	var list strings.Builder
	for _, path := range paths {
		fmt.Fprintf(&list, "file '%s'\n", strings.ReplaceAll(path, "'", `'\''`))
	}
	listPath, err := ws.Write("clips.txt", []byte(list.String()))
	if err != nil {
		return &VideoError{Stage: "export", Err: err}
	}

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		"-y", ws.Path("timeline.mp4"),
	}
	if _, err := e.runner.Run(ctx, e.tools.FFmpeg, args...); err != nil {
		return &VideoError{Stage: "export", Err: err}
	}

	out, err := ws.Read("timeline.mp4")
	if err != nil {
		return &VideoError{Stage: "export", Err: err}
	}
	if _, err := w.Write(out); err != nil {
		return &VideoError{Stage: "export", Err: fmt.Errorf("failed to write export: %w", err)}
	}

	e.logger.Info("Exported timeline", slog.Int("clips", len(clips)), slog.Int("bytes", len(out)))
	return nil
}
