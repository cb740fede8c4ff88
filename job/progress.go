package job

import (
	"context"
	"math"
	"time"
)

const (
	GenerateDuration = 100 * time.Second
	ExtendDuration   = 70 * time.Second

	tickInterval = time.Second
)

// Stage is a cosmetic milestone shown once progress reaches Threshold.
type Stage struct {
	Threshold float64
	Label     string
}

var Stages = []Stage{
	{Threshold: 0, Label: "Initializing"},
	{Threshold: 15, Label: "Analyzing prompt"},
	{Threshold: 30, Label: "Generating keyframes"},
	{Threshold: 50, Label: "Synthesizing video"},
	{Threshold: 80, Label: "Upscaling and enhancing"},
	{Threshold: 98, Label: "Finalizing"},
}

// Snapshot is what the UI shows for an in-flight job. Progress stays below
// 100 until the poller confirms completion.
type Snapshot struct {
	Progress  float64       `json:"progress"`
	Remaining time.Duration `json:"remaining"`
	Stage     string        `json:"stage"`
	Done      bool          `json:"done"`
}

// Estimate derives a snapshot from elapsed time against the expected duration.
func Estimate(elapsed, duration time.Duration) Snapshot {
	if elapsed < 0 {
		elapsed = 0
	}
	progress := 99.0
	if duration > 0 {
		progress = math.Min(99, float64(elapsed)/float64(duration)*100)
	}
	remaining := duration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		Progress:  progress,
		Remaining: remaining,
		Stage:     StageFor(progress),
	}
}

// StageFor returns the label of the last stage whose threshold has been reached.
func StageFor(progress float64) string {
	label := Stages[0].Label
	for _, stage := range Stages {
		if stage.Threshold <= progress {
			label = stage.Label
		}
	}
	return label
}

// Complete is the snapshot shown once the job has actually finished.
func Complete() Snapshot {
	return Snapshot{Progress: 100, Stage: Stages[len(Stages)-1].Label, Done: true}
}

type Estimator struct {
	duration time.Duration
	clock    Clock
	start    time.Time
}

func NewEstimator(duration time.Duration, clock Clock) *Estimator {
	if clock == nil {
		clock = RealClock
	}
	return &Estimator{duration: duration, clock: clock, start: clock.Now()}
}

func (e *Estimator) Snapshot() Snapshot {
	return Estimate(e.clock.Now().Sub(e.start), e.duration)
}

// Run reports a snapshot every second until ctx is cancelled or the expected
// duration has elapsed. The last reported snapshot holds at 99 percent.
func (e *Estimator) Run(ctx context.Context, report func(Snapshot)) {
	report(e.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.clock.After(tickInterval):
		}
		snapshot := e.Snapshot()
		report(snapshot)
		if snapshot.Remaining == 0 {
			return
		}
	}
}
