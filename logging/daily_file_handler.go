package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// dailyFile is shared by a handler and every handler derived from it via
// WithAttrs/WithGroup, so they all rotate and write the same file.
type dailyFile struct {
	mutex    sync.Mutex
	dir      string
	prefix   string
	file     *os.File
	fileName string
	now      func() time.Time
}

type DailyFileHandler struct {
	out            *dailyFile
	attrs          []slog.Attr
	group          string
	defaultHandler slog.Handler
}

func NewDailyFileHandler(logDir, prefix string, opts *slog.HandlerOptions) (*DailyFileHandler, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	h := &DailyFileHandler{
		out:            &dailyFile{dir: logDir, prefix: prefix, now: time.Now},
		defaultHandler: slog.NewTextHandler(os.Stdout, opts),
	}

	if err := h.out.rotateIfNeeded(); err != nil {
		return nil, err
	}

	return h, nil
}

func (d *dailyFile) rotateIfNeeded() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	fileName := fmt.Sprintf("%s-%s.log", d.prefix, d.now().Format("2006-01-02"))
	if fileName == d.fileName {
		return nil
	}

	if d.file != nil {
		d.file.Close()
	}

	f, err := os.OpenFile(filepath.Join(d.dir, fileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	d.file = f
	d.fileName = fileName
	return nil
}

func (d *dailyFile) write(line string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	_, err := d.file.WriteString(line)
	return err
}

// Close releases the current log file.
func (h *DailyFileHandler) Close() error {
	h.out.mutex.Lock()
	defer h.out.mutex.Unlock()
	if h.out.file == nil {
		return nil
	}
	err := h.out.file.Close()
	h.out.file = nil
	h.out.fileName = ""
	return err
}

func (h *DailyFileHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.out.rotateIfNeeded(); err != nil {
		// If rotation fails, at least log to stdout
		return h.defaultHandler.Handle(ctx, r)
	}

	var attrs strings.Builder
	for _, a := range h.attrs {
		fmt.Fprintf(&attrs, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&attrs, " %s=%v", h.qualify(a.Key), a.Value)
		return true
	})

	line := fmt.Sprintf("[%s] %-5s %s%s\n", r.Time.Format("2006/01/02 15:04:05.000"), r.Level.String(), r.Message, attrs.String())
	err := h.out.write(line)

	if err2 := h.defaultHandler.Handle(ctx, r); err2 != nil && err == nil {
		err = err2
	}
	return err
}

func (h *DailyFileHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *DailyFileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		merged = append(merged, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}
	return &DailyFileHandler{
		out:            h.out,
		attrs:          merged,
		group:          h.group,
		defaultHandler: h.defaultHandler.WithAttrs(attrs),
	}
}

func (h *DailyFileHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &DailyFileHandler{
		out:            h.out,
		attrs:          h.attrs,
		group:          group,
		defaultHandler: h.defaultHandler.WithGroup(name),
	}
}

func (h *DailyFileHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.defaultHandler.Enabled(ctx, level)
}

// New builds the process logger: daily files under logDir mirrored to stdout.
func New(logDir string, level slog.Level) (*slog.Logger, *DailyFileHandler, error) {
	handler, err := NewDailyFileHandler(logDir, "studio", &slog.HandlerOptions{Level: level})
	if err != nil {
		return nil, nil, err
	}
	return slog.New(handler), handler, nil
}
