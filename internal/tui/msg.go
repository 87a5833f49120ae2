package tui

import "github.com/sdd-engine/sdd/internal/workspace"

// MsgUpdate delivers a monitor refresh to the program.
type MsgUpdate struct {
	Update workspace.Update
}

// MsgEditorDone is sent when the external editor exits.
type MsgEditorDone struct {
	Path string
	Err  error
}

// MsgRefreshDone is sent when a manual refresh finishes. The snapshot
// itself arrives separately as MsgUpdate.
type MsgRefreshDone struct {
	Err error
}

// MsgError reports a background failure to the message log.
type MsgError struct {
	Msg string
}
