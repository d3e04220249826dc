// ABOUTME: TUI initialization
// ABOUTME: Wraps the bubbletea program for the player
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/crossing-radio/internal/app"
)

// New creates the TUI program
func New(ctx context.Context, ctrl Controller, snapshots <-chan app.Snapshot) *tea.Program {
	return tea.NewProgram(NewModel(ctx, ctrl, snapshots), tea.WithAltScreen(), tea.WithContext(ctx))
}
