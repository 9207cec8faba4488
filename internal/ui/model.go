// Package ui renders batch conversion progress as a terminal view. The
// conversion itself runs in a separate goroutine and feeds the view through
// tea.Program.Send.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AppState represents the current state of the conversion view
type AppState int

const (
	StateRunning  AppState = iota // Batch in flight
	StateDone                     // Batch finished within the failure threshold
	StateFailed                   // Batch finished over the failure threshold
	StateCanceled                 // User quit before completion
)

const maxFailureLines = 5

// Model represents the progress view's state
type Model struct {
	state  AppState
	width  int
	height int

	title string

	spinner spinner.Model
	bar     progress.Model

	done      int
	total     int
	succeeded int
	failed    int
	current   string

	// Most recent failures, newest last.
	failures []string

	finalErr error
}

// NewModel creates a progress view for a batch of the given size.
func NewModel(title string, total int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bar := progress.New(progress.WithDefaultGradient())

	return Model{
		state:   StateRunning,
		title:   title,
		spinner: s,
		bar:     bar,
		total:   total,
	}
}

// Init starts the spinner
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := msg.Width - 8
		if w > 60 {
			w = 60
		}
		if w > 0 {
			m.bar.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == StateRunning {
				m.state = StateCanceled
			}
			return m, tea.Quit
		}
		return m, nil

	case HourCompletedMsg:
		m.done = msg.Done
		if msg.Total > 0 {
			m.total = msg.Total
		}
		m.current = msg.Input
		if msg.Err != nil {
			m.failed++
			m.failures = append(m.failures, fmt.Sprintf("%s: %v", msg.Input, msg.Err))
			if len(m.failures) > maxFailureLines {
				m.failures = m.failures[len(m.failures)-maxFailureLines:]
			}
		} else {
			m.succeeded++
		}
		if m.total > 0 {
			return m, m.bar.SetPercent(float64(m.done) / float64(m.total))
		}
		return m, nil

	case BatchFinishedMsg:
		m.finalErr = msg.Err
		if msg.Result != nil {
			m.succeeded = msg.Result.Succeeded
			m.failed = msg.Result.Failed
		}
		if msg.Err != nil {
			m.state = StateFailed
		} else {
			m.state = StateDone
		}
		return m, tea.Sequence(m.bar.SetPercent(1.0), tea.Quit)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		m.bar = pm.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// View renders the progress screen
func (m Model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render(m.title) + "\n\n")

	switch m.state {
	case StateRunning:
		status := fmt.Sprintf("Processing %s", m.current)
		if m.current == "" {
			status = "Starting..."
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", m.spinner.View(), statusStyle.Render(status)))
	case StateDone:
		b.WriteString("  " + countStyle.Render("Complete") + "\n")
	case StateFailed:
		b.WriteString("  " + failStyle.Render("Failed: "+m.finalErr.Error()) + "\n")
	case StateCanceled:
		b.WriteString("  " + statusStyle.Render("Canceled") + "\n")
	}

	b.WriteString("\n  " + m.bar.View() + "\n\n")

	counts := fmt.Sprintf("  %s  %s  %s",
		statusStyle.Render(fmt.Sprintf("%d/%d hours", m.done, m.total)),
		countStyle.Render(fmt.Sprintf("%d ok", m.succeeded)),
		failStyle.Render(fmt.Sprintf("%d failed", m.failed)),
	)
	b.WriteString(counts + "\n")

	if len(m.failures) > 0 {
		b.WriteString("\n")
		for _, f := range m.failures {
			b.WriteString("  " + failDetailStyle.Render("✗ "+f) + "\n")
		}
	}

	b.WriteString("\n  " + helpStyle.Render("q/ctrl+c: quit") + "\n")
	return b.String()
}

// State reports the terminal state after the program exits.
func (m Model) State() AppState { return m.state }

// Err returns the overall batch error, if any.
func (m Model) Err() error { return m.finalErr }
