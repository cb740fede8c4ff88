package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/serisow/studio/job"
	"github.com/serisow/studio/prefs"
	"github.com/serisow/studio/timeline"
)

const defaultRefresh = 250 * time.Millisecond

// StatusSource is polled for the job being watched.
type StatusSource interface {
	Status() timeline.Status
}

type palette struct {
	title lipgloss.Style
	muted lipgloss.Style
	err   lipgloss.Style
	ok    lipgloss.Style
	panel lipgloss.Style
	from  string
	to    string
}

func paletteFor(theme prefs.Theme) palette {
	if theme == prefs.ThemeDark {
		return palette{
			title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
			muted: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			err:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
			ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
			panel: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1),
			from:  "#5A56E0",
			to:    "#EE6FF8",
		}
	}
	return palette{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("55")),
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		err:   lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
		panel: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("99")).Padding(0, 1),
		from:  "#3B82F6",
		to:    "#8B5CF6",
	}
}

type statusMsg timeline.Status

type tickMsg time.Time

// JobView renders the progress estimate of a video job until the hub
// reports it done or failed.
type JobView struct {
	source   StatusSource
	title    string
	refresh  time.Duration
	bar      progress.Model
	colors   palette
	status   timeline.Status
	quitting bool
}

func NewJobView(source StatusSource, title string, theme prefs.Theme) JobView {
	colors := paletteFor(theme)
	return JobView{
		source:  source,
		title:   title,
		refresh: defaultRefresh,
		bar:     progress.New(progress.WithGradient(colors.from, colors.to), progress.WithWidth(48)),
		colors:  colors,
	}
}

func (m JobView) Init() tea.Cmd {
	return m.poll()
}

func (m JobView) poll() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		return statusMsg(source.Status())
	}
}

func (m JobView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width > 72 {
			width = 72
		}
		if width > 10 {
			m.bar.Width = width
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case statusMsg:
		m.status = timeline.Status(msg)
		if m.Settled() {
			return m, tea.Quit
		}
		return m, tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
	case tickMsg:
		return m, m.poll()
	}
	return m, nil
}

// Settled reports whether the job reached a terminal state.
func (m JobView) Settled() bool {
	return m.status.State == job.StateDone || m.status.State == job.StateFailed
}

func (m JobView) Status() timeline.Status {
	return m.status
}

func (m JobView) View() string {
	var b strings.Builder
	b.WriteString(m.colors.title.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(m.status.Progress.Progress / 100))
	b.WriteString("\n")

	switch {
	case m.status.State == job.StateFailed && m.status.Error != nil:
		b.WriteString(m.colors.err.Render(m.status.Error.Message))
	case m.status.State == job.StateDone:
		b.WriteString(m.colors.ok.Render("Your video is ready!"))
	default:
		stage := m.status.Progress.Stage
		if stage == "" {
			stage = "Submitting"
		}
		b.WriteString(stage)
		b.WriteString(m.colors.muted.Render(" · " + FormatRemaining(m.status.Progress.Remaining)))
	}
	if !m.Settled() {
		b.WriteString("\n")
		b.WriteString(m.colors.muted.Render("Generation continues in the background. Press q to stop watching."))
	}
	return m.colors.panel.Render(b.String()) + "\n"
}

// FormatRemaining renders an estimate such as "about 1m 20s remaining".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "almost done"
	}
	d = d.Round(time.Second)
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	if minutes == 0 {
		return fmt.Sprintf("about %ds remaining", seconds)
	}
	return fmt.Sprintf("about %dm %02ds remaining", minutes, seconds)
}

// Watch runs the job view on out until the job settles, the user quits or
// ctx is cancelled, and returns the last status seen.
func Watch(ctx context.Context, source StatusSource, title string, theme prefs.Theme, out io.Writer) (timeline.Status, error) {
	p := tea.NewProgram(NewJobView(source, title, theme), tea.WithContext(ctx), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return timeline.Status{}, err
	}
	view, ok := final.(JobView)
	if !ok {
		return source.Status(), nil
	}
	if view.quitting && !view.Settled() {
		return view.status, ErrStoppedWatching
	}
	return view.status, nil
}

var ErrStoppedWatching = errors.New("stopped watching before the job finished")
