package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const DefaultPollInterval = 10 * time.Second

// OperationClient is the part of the generation service the poller needs.
type OperationClient interface {
	GetOperation(ctx context.Context, name string) (*Operation, error)
	Download(ctx context.Context, uri string) ([]byte, string, error)
}

// MediaStore turns downloaded bytes into a locally addressable reference.
type MediaStore interface {
	Put(data []byte, mimeType string) string
}

// Result is the outcome of a completed video job.
type Result struct {
	MediaRef  string     `json:"media_ref"`
	MimeType  string     `json:"mime_type"`
	Operation *Operation `json:"operation"`
}

type Poller struct {
	client   OperationClient
	store    MediaStore
	interval time.Duration
	clock    Clock
	logger   *slog.Logger
}

func NewPoller(client OperationClient, store MediaStore, interval time.Duration, clock Clock, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if clock == nil {
		clock = RealClock
	}
	return &Poller{
		client:   client,
		store:    store,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

// Wait refreshes op every interval until the service reports it done, then
// downloads the generated video into the media store. Cancelling ctx only
// stops waiting; the remote job keeps running.
func (p *Poller) Wait(ctx context.Context, op *Operation) (*Result, error) {
	current, err := p.Poll(ctx, op)
	if err != nil {
		return nil, err
	}

	uri := current.VideoURI()
	if uri == "" {
		return nil, ErrNoArtifact
	}

	data, mimeType, err := p.client.Download(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("error downloading generated video: %w", err)
	}
	if mimeType == "" {
		mimeType = "video/mp4"
	}

	ref := p.store.Put(data, mimeType)
	p.logger.Info("Video downloaded",
		slog.String("operation", current.Name),
		slog.String("media_ref", ref),
		slog.Int("bytes", len(data)))

	return &Result{MediaRef: ref, MimeType: mimeType, Operation: current}, nil
}

// Poll loops until the operation is done and returns its terminal state. A
// remote failure is returned as *OperationError and never retried.
func (p *Poller) Poll(ctx context.Context, op *Operation) (*Operation, error) {
	if op == nil {
		return nil, fmt.Errorf("operation handle is nil")
	}
	current := op
	attempt := 0
	for !current.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-p.clock.After(p.interval):
		}

		attempt++
		next, err := p.client.GetOperation(ctx, current.Name)
		if err != nil {
			return nil, fmt.Errorf("error refreshing operation %s: %w", current.Name, err)
		}
		p.logger.Debug("Polled video operation",
			slog.String("operation", current.Name),
			slog.Int("attempt", attempt),
			slog.Bool("done", next.Done))
		if next.Name == "" {
			next.Name = current.Name
		}
		current = next
	}

	if current.Error != nil {
		return nil, &OperationError{Code: current.Error.Code, Message: current.Error.Message}
	}
	return current, nil
}
