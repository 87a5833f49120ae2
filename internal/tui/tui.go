package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Program is an alias for tea.Program, exposed so callers don't need
// to import bubbletea directly.
type Program = tea.Program

// NewProgram creates a BubbleTea program on the alternate screen.
func NewProgram(opts Options, progOpts ...tea.ProgramOption) *Program {
	model := NewAppModel(opts)
	allOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
	}
	allOpts = append(allOpts, progOpts...)
	return tea.NewProgram(model, allOpts...)
}

// WithOutput returns a program option that directs TUI output to the given writer.
func WithOutput(w io.Writer) tea.ProgramOption {
	return tea.WithOutput(w)
}

// WithInput returns a program option that reads TUI input from r.
func WithInput(r io.Reader) tea.ProgramOption {
	return tea.WithInput(r)
}
