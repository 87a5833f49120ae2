package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sdd-engine/sdd/internal/workspace"
)

// Sender is the subset of *tea.Program the bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

var _ Sender = (*tea.Program)(nil)

// MonitorBridge forwards monitor updates into a BubbleTea program as typed
// messages. tea.Program.Send is goroutine-safe, so the bridge may be called
// from the monitor's refresh goroutine.
type MonitorBridge struct {
	program Sender
}

// NewMonitorBridge creates a bridge that sends messages to the given program.
func NewMonitorBridge(p Sender) *MonitorBridge {
	return &MonitorBridge{program: p}
}

// HandleUpdate sends MsgUpdate. Its signature matches Monitor.OnUpdate.
func (b *MonitorBridge) HandleUpdate(u workspace.Update) {
	b.program.Send(MsgUpdate{Update: u})
}

// Error sends MsgError.
func (b *MonitorBridge) Error(err error) {
	if err == nil {
		return
	}
	b.program.Send(MsgError{Msg: err.Error()})
}
