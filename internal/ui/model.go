// ABOUTME: Bubbletea model for the player TUI
// ABOUTME: Clock face with a blinking colon and a play/pause toggle
package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crossing-radio/internal/app"
)

// Controller is the play/pause surface the UI drives
type Controller interface {
	Toggle(ctx context.Context) error
}

// SnapshotMsg carries the session state after a tick or command
type SnapshotMsg app.Snapshot

// toggledMsg reports the result of a toggle
type toggledMsg struct {
	err error
}

var (
	clockStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFBEB"))
	dateStyle  = lipgloss.NewStyle().Bold(true)
	dayStyle   = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#1C1917")).
			Background(lipgloss.Color("#FFFBEB")).
			Padding(0, 1)
	playStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#84CC16"))
	pauseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8A29E"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

// Model represents the TUI state
type Model struct {
	ctx       context.Context
	ctrl      Controller
	snapshots <-chan app.Snapshot

	snap    app.Snapshot
	hasSnap bool
	busy    bool
	err     error

	// Dimensions
	width  int
	height int
}

// NewModel creates a model reading snapshots from snapshots
func NewModel(ctx context.Context, ctrl Controller, snapshots <-chan app.Snapshot) Model {
	return Model{ctx: ctx, ctrl: ctrl, snapshots: snapshots}
}

// Init starts listening for snapshots
func (m Model) Init() tea.Cmd {
	return listen(m.snapshots)
}

func listen(ch <-chan app.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg(snap)
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case SnapshotMsg:
		m.snap = app.Snapshot(msg)
		m.hasSnap = true
		return m, listen(m.snapshots)
	case toggledMsg:
		m.busy = false
		m.err = msg.err
	}

	return m, nil
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "enter":
		if m.busy || m.ctrl == nil {
			return m, nil
		}
		m.busy = true
		ctrl, ctx := m.ctrl, m.ctx
		return m, func() tea.Msg {
			return toggledMsg{err: ctrl.Toggle(ctx)}
		}
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if !m.hasSnap {
		return "Loading..."
	}

	now := m.snap.Now
	colon := ":"
	if now.Second()%2 == 1 {
		colon = " "
	}
	face := clockStyle.Render(now.Format("3") + colon + now.Format("04") + " " + now.Format("PM"))
	date := dateStyle.Render(now.Format("January 2"))
	day := dayStyle.Render(now.Format("Mon") + ".")

	width := lipgloss.Width(date) + lipgloss.Width(day) + 4
	rule := strings.Repeat("─", width)

	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, face))
	b.WriteString("\n" + rule + "\n")
	b.WriteString(date + "    " + day + "\n\n")
	b.WriteString(m.renderStatus() + "\n")
	if m.err != nil {
		b.WriteString(errStyle.Render(truncate(m.err.Error(), 60)) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("space:Play/Pause  q:Quit") + "\n")

	if m.width == 0 {
		return b.String()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

func (m Model) renderStatus() string {
	switch {
	case m.busy && !m.snap.Playing:
		return pauseStyle.Render("… Loading " + m.snap.Label)
	case m.snap.Playing:
		return playStyle.Render(fmt.Sprintf("▶ Playing %s", m.snap.Label))
	default:
		return pauseStyle.Render("⏸ Paused")
	}
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
