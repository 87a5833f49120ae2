package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/sdd-engine/sdd/internal/logging"
	"github.com/sdd-engine/sdd/internal/telemetry"
	"github.com/sdd-engine/sdd/internal/workflow"
)

// Update is the result of one refresh: the new snapshot and the
// notifications detected against the previous one.
type Update struct {
	Snapshot      *Snapshot
	Notifications []workflow.Notification
	Duration      time.Duration
}

// Monitor holds the previous and current snapshots of a workspace and turns
// each refresh into an Update. Refreshes are serialized, so handlers observe
// updates in order and never see a torn previous/current pair.
type Monitor struct {
	root    string
	logger  *logging.Logger
	emitter *telemetry.Emitter

	mu       sync.Mutex
	previous *Snapshot
	current  *Snapshot
	handlers []func(Update)
	onError  []func(error)
}

// NewMonitor creates a Monitor for root. logger and emitter may be nil.
func NewMonitor(root string, logger *logging.Logger, emitter *telemetry.Emitter) *Monitor {
	return &Monitor{
		root:    root,
		logger:  logger,
		emitter: emitter,
	}
}

// OnUpdate registers a handler called after every successful refresh.
// Handlers run on the refreshing goroutine and must not call Refresh.
func (m *Monitor) OnUpdate(fn func(Update)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, fn)
}

// OnError registers a handler for refresh failures inside Run. Failures
// caused by Run's context being cancelled are not reported.
func (m *Monitor) OnError(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = append(m.onError, fn)
}

// Current returns the latest snapshot, or nil before the first refresh.
func (m *Monitor) Current() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Previous returns the snapshot before the latest one, or nil.
func (m *Monitor) Previous() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.previous
}

// Refresh reloads the workspace, shifts current to previous, and detects
// transitions between them. The first refresh never yields notifications.
func (m *Monitor) Refresh(ctx context.Context) (Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	snap, err := Load(ctx, m.root)
	if err != nil {
		m.logger.Error("workspace refresh failed", "root", m.root, "error", err)
		return Update{}, err
	}

	var prev []*workflow.Workflow
	if m.current != nil {
		prev = m.current.Workflows
	}
	notes := workflow.DetectTransitions(prev, snap.Workflows)

	m.previous = m.current
	m.current = snap

	upd := Update{Snapshot: snap, Notifications: notes, Duration: time.Since(start)}
	m.record(upd)

	for _, fn := range m.handlers {
		fn(upd)
	}
	return upd, nil
}

func (m *Monitor) record(upd Update) {
	snap := upd.Snapshot
	m.logger.Info("workspace refreshed",
		"workflows", len(snap.Workflows),
		"errored", len(snap.Errored),
		"notifications", len(upd.Notifications),
		"duration", upd.Duration)

	m.emit(telemetry.Event{
		Kind: telemetry.KindRefresh,
		Data: telemetry.RefreshData{
			Workflows:     len(snap.Workflows),
			Errored:       len(snap.Errored),
			Notifications: len(upd.Notifications),
			DurationMS:    upd.Duration.Milliseconds(),
		},
	})

	for _, dir := range snap.Errored {
		reason := ""
		if err := snap.Failures[dir]; err != nil {
			reason = err.Error()
		}
		m.logger.Warn("workflow failed to load", "dir", dir, "error", reason)
		m.emit(telemetry.Event{
			Kind: telemetry.KindParseError,
			Data: map[string]string{"dir": dir, "error": reason},
		})
	}

	for _, n := range upd.Notifications {
		m.logger.Info("transition", "workflow", n.WorkflowID, "type", string(n.Kind), "item", n.ItemTitle)
		m.emit(telemetry.Event{
			Kind:       telemetry.KindTransition,
			WorkflowID: n.WorkflowID,
			Data:       n,
		})
	}
}

func (m *Monitor) emit(evt telemetry.Event) {
	if err := m.emitter.Emit(evt); err != nil {
		m.logger.Warn("telemetry emit failed", "error", err)
	}
}

// Run refreshes once and then once per signal on changes, until ctx is
// cancelled or changes is closed. Refresh errors go to the OnError handlers
// and do not stop the loop.
func (m *Monitor) Run(ctx context.Context, changes <-chan struct{}) {
	if !m.runRefresh(ctx) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok || !m.runRefresh(ctx) {
				return
			}
		}
	}
}

// runRefresh refreshes and reports failures. It returns false once ctx is done.
func (m *Monitor) runRefresh(ctx context.Context) bool {
	_, err := m.Refresh(ctx)
	if err == nil {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	m.mu.Lock()
	handlers := m.onError
	m.mu.Unlock()
	for _, fn := range handlers {
		fn(err)
	}
	return true
}
