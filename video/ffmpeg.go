package video

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ExecRunner runs tools with os/exec and keeps stderr for diagnostics.
type ExecRunner struct {
	logger *slog.Logger
}

func NewExecRunner(logger *slog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.logger.Debug("Executing command", slog.String("name", name), slog.Any("args", args))

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	stderrOutput, _ := io.ReadAll(stderr)

	if err := cmd.Wait(); err != nil {
		r.logger.Error("Command execution failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
			slog.String("stderr", string(stderrOutput)))
		return nil, fmt.Errorf("%s execution failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// Tools locates ffmpeg and ffprobe.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

// ToolsFor derives the ffprobe path from the ffmpeg path, expecting both in
// the same directory.
func ToolsFor(ffmpegPath string) Tools {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	probe := "ffprobe"
	if dir := filepath.Dir(ffmpegPath); dir != "." {
		probe = filepath.Join(dir, "ffprobe")
	}
	return Tools{FFmpeg: ffmpegPath, FFprobe: probe}
}

// ProbeDuration returns a clip's duration in seconds.
func ProbeDuration(ctx context.Context, runner Runner, tools Tools, clip []byte) (float64, error) {
	ws, err := newWorkspace()
	if err != nil {
		return 0, &VideoError{Stage: "probe", Err: err}
	}
	defer ws.Close()

	path, err := ws.Write("clip.mp4", clip)
	if err != nil {
		return 0, &VideoError{Stage: "probe", Err: err}
	}

	output, err := runner.Run(ctx, tools.FFprobe, "-i", path, "-show_entries", "format=duration", "-v", "quiet", "-of", "csv=p=0")
	if err != nil {
		return 0, &VideoError{Stage: "probe", Err: err}
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, &VideoError{Stage: "probe", Err: fmt.Errorf("failed to parse duration: %w", err)}
	}
	return duration, nil
}
