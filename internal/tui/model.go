package tui

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sdd-engine/sdd/internal/focus"
	"github.com/sdd-engine/sdd/internal/logging"
	"github.com/sdd-engine/sdd/internal/stepper"
	"github.com/sdd-engine/sdd/internal/workflow"
	"github.com/sdd-engine/sdd/internal/workspace"
)

// maxLogEntries bounds the in-memory message log.
const maxLogEntries = 50

// Options configures the application model.
type Options struct {
	Root       string
	Editor     string
	FocusStore *focus.Store
	// Refresh triggers a workspace reload; the result arrives as MsgUpdate.
	Refresh func(ctx context.Context) error
	Logger  *logging.Logger
}

type logEntry struct {
	Text string
	Err  bool
}

// AppModel is the root BubbleTea model composing all sub-views.
type AppModel struct {
	StatusBar StatusBar
	Tree      TreeView
	Detail    DetailPanel
	Keys      KeyMap
	Width     int
	Height    int
	Snapshot  *workspace.Snapshot
	Focus     *workspace.FocusRef
	Messages  []logEntry

	controller *stepper.Controller
	focusStore *focus.Store
	editor     string
	refresh    func(ctx context.Context) error
	logger     *logging.Logger
}

// NewAppModel creates the root model and loads any stored focus.
func NewAppModel(opts Options) AppModel {
	m := AppModel{
		Tree:       NewTreeView(),
		Detail:     NewDetailPanel(80, 10),
		Keys:       DefaultKeyMap(),
		controller: stepper.NewController(opts.Root, nil),
		focusStore: opts.FocusStore,
		editor:     opts.Editor,
		refresh:    opts.Refresh,
		logger:     opts.Logger,
	}
	m.Detail.SetEmpty("Loading workflows...")
	if m.focusStore != nil {
		ref, err := m.focusStore.Load()
		if err != nil {
			m.addError("loading focus: %s", err)
		}
		m.Focus = ref
	}
	return m
}

// Init performs no work; the monitor delivers the first snapshot.
func (m AppModel) Init() tea.Cmd {
	return nil
}

// Update handles all messages.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.StatusBar.Width = msg.Width
		m.layout()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case MsgUpdate:
		m.applySnapshot(msg.Update.Snapshot)
		m.StatusBar.RefreshedAt = time.Now()
		for _, n := range msg.Update.Notifications {
			m.addMessage("%s", n.Message())
		}

	case MsgEditorDone:
		if msg.Err != nil {
			m.logger.Warn("editor exited with error", "path", msg.Path, "error", msg.Err)
			m.addError("editor: %s", msg.Err)
		}

	case MsgRefreshDone:
		if msg.Err != nil {
			m.addError("refresh: %s", msg.Err)
		}

	case MsgError:
		m.addError("%s", msg.Msg)
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Up):
		m.Tree.MoveUp()
		m.updateDetail()
	case key.Matches(msg, m.Keys.Down):
		m.Tree.MoveDown()
		m.updateDetail()
	case key.Matches(msg, m.Keys.Toggle):
		if m.Tree.Toggle() {
			m.Tree.SetSnapshot(m.Snapshot)
			m.updateDetail()
		}
	case key.Matches(msg, m.Keys.OpenSpec):
		if l := m.selectedLeaf(); l != nil {
			return m, m.openEditor(workflow.SpecPath(l))
		}
	case key.Matches(msg, m.Keys.OpenPlan):
		if l := m.selectedLeaf(); l != nil && workflow.HasPlan(l) {
			return m, m.openEditor(workflow.PlanPath(l))
		}
	case key.Matches(msg, m.Keys.Focus):
		if l := m.selectedLeaf(); l != nil {
			m.setFocus(&workspace.FocusRef{WorkflowID: l.WorkflowID, ItemID: l.ID})
		}
	case key.Matches(msg, m.Keys.ClearFocus):
		if m.Focus != nil {
			m.setFocus(nil)
		}
	case key.Matches(msg, m.Keys.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, m.Keys.ScrollUp):
		m.Detail.ScrollUp()
	case key.Matches(msg, m.Keys.ScrollDown):
		m.Detail.ScrollDown()
	}
	return m, nil
}

func (m AppModel) selectedLeaf() *workflow.LeafItem {
	if r := m.Tree.Selected(); r != nil {
		return r.leaf()
	}
	return nil
}

// openEditor suspends the program and opens a workspace-relative file.
func (m AppModel) openEditor(rel string) tea.Cmd {
	path, err := m.controller.Resolve(rel)
	if err != nil {
		return func() tea.Msg { return MsgEditorDone{Path: rel, Err: err} }
	}
	parts := strings.Fields(m.editor)
	if len(parts) == 0 {
		parts = []string{"vi"}
	}
	c := exec.Command(parts[0], append(parts[1:], path)...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return MsgEditorDone{Path: path, Err: err}
	})
}

func (m AppModel) refreshCmd() tea.Cmd {
	if m.refresh == nil {
		return nil
	}
	refresh := m.refresh
	return func() tea.Msg {
		return MsgRefreshDone{Err: refresh(context.Background())}
	}
}

// setFocus persists and applies a new focus. nil clears it.
func (m *AppModel) setFocus(ref *workspace.FocusRef) {
	if m.focusStore != nil {
		var err error
		if ref == nil {
			err = m.focusStore.Clear()
		} else {
			err = m.focusStore.Save(*ref)
		}
		if err != nil {
			m.addError("saving focus: %s", err)
			return
		}
	}
	m.Focus = ref
	if ref == nil {
		m.addMessage("Focus cleared")
	} else {
		m.addMessage("Focused on %s/%s", ref.WorkflowID, ref.ItemID)
	}
	m.updateSummary()
}

// applySnapshot replaces the snapshot and refreshes every derived view.
func (m *AppModel) applySnapshot(s *workspace.Snapshot) {
	m.Snapshot = s
	m.Tree.SetSnapshot(s)
	m.controller.SetSnapshot(s)
	m.updateSummary()
	m.updateDetail()
}

// updateSummary recomputes the status bar. A focus that no longer
// resolves is dropped from the store.
func (m *AppModel) updateSummary() {
	sum := workspace.Summarize(m.Snapshot, m.Focus)
	if sum.FocusStale {
		m.logger.Info("clearing stale focus", "workflow", m.Focus.WorkflowID, "item", m.Focus.ItemID)
		if m.focusStore != nil {
			if err := m.focusStore.Clear(); err != nil {
				m.addError("clearing focus: %s", err)
			}
		}
		m.Focus = nil
	}
	m.StatusBar.Summary = sum
	if m.Snapshot != nil {
		m.StatusBar.Workflows = len(m.Snapshot.Workflows)
		m.StatusBar.Errored = len(m.Snapshot.Errored)
	} else {
		m.StatusBar.Workflows, m.StatusBar.Errored = 0, 0
	}
}

// updateDetail shows the selected row in the detail panel.
func (m *AppModel) updateDetail() {
	r := m.Tree.Selected()
	if r == nil {
		if m.Snapshot != nil && !m.Snapshot.HasProject {
			m.Detail.SetEmpty("No .sdd/ directory in this workspace")
		} else {
			m.Detail.SetEmpty("No workflow selected")
		}
		return
	}

	switch r.Kind {
	case rowWorkflow:
		m.Detail.SetContent("Workflow "+r.Workflow.ID, FormatWorkflow(r.Workflow))
	case rowErrored:
		m.Detail.SetContent(r.Errored, FormatErrored(r.Errored, r.Err))
	default:
		msg, err := m.controller.Show(r.Workflow.ID, r.Item.Common().ID)
		if err != nil {
			m.Detail.SetEmpty(err.Error())
			return
		}
		switch it := msg.Item.(type) {
		case *workflow.LeafItem:
			m.Detail.SetContent(workflow.Label(it), FormatLeaf(stepper.BuildLeaf(it, msg.AllItems)))
		case *workflow.EpicItem:
			m.Detail.SetContent(it.Title, FormatEpic(stepper.BuildEpic(it, msg.AllItems), m.Detail.viewport.Width))
		}
	}
}

func (m *AppModel) addMessage(format string, args ...any) {
	m.appendLog(logEntry{Text: fmt.Sprintf(format, args...)})
}

func (m *AppModel) addError(format string, args ...any) {
	m.appendLog(logEntry{Text: fmt.Sprintf(format, args...), Err: true})
}

func (m *AppModel) appendLog(e logEntry) {
	m.Messages = append(m.Messages, e)
	if len(m.Messages) > maxLogEntries {
		m.Messages = m.Messages[len(m.Messages)-maxLogEntries:]
	}
}

// layout sizes the tree and detail panel. Wide terminals place them side
// by side; narrow ones stack the detail under the tree.
func (m *AppModel) layout() {
	// Status bar, footer border and footer line, plus the message log.
	bodyHeight := max(m.Height-3-maxMessages, 4)
	if m.Width >= SplitWidth {
		treeWidth := m.Width * 2 / 5
		m.Tree.Width = treeWidth
		m.Tree.Height = bodyHeight
		m.Detail.SetSize(max(m.Width-treeWidth-4, 10), max(bodyHeight-3, 1))
	} else {
		treeHeight := bodyHeight / 2
		m.Tree.Width = m.Width
		m.Tree.Height = treeHeight
		m.Detail.SetSize(max(m.Width-4, 10), max(bodyHeight-treeHeight-3, 1))
	}
	m.Tree.clampOffset()
	m.updateDetail()
}

// View renders the full TUI.
func (m AppModel) View() string {
	if m.Width > 0 && (m.Width < MinWidth || m.Height < MinHeight) {
		return fmt.Sprintf("Terminal too small (%dx%d), need at least %dx%d", m.Width, m.Height, MinWidth, MinHeight)
	}

	var body string
	tree := m.Tree.View(m.Focus)
	if m.Width >= SplitWidth {
		left := lipgloss.NewStyle().Width(m.Tree.Width).Height(m.Tree.Height).Render(tree)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, m.Detail.View())
	} else {
		top := lipgloss.NewStyle().Height(m.Tree.Height).Render(tree)
		body = lipgloss.JoinVertical(lipgloss.Left, top, m.Detail.View())
	}

	sections := []string{m.StatusBar.View(), body}
	if log := m.renderMessages(); log != "" {
		sep := styleSectionBorder.Width(m.Width).Render("")
		sections = append(sections, sep, log)
	}
	footer := Footer{Width: m.Width, Bindings: footerBindings(m.Keys, m.Tree.Selected())}
	sections = append(sections, footer.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m AppModel) renderMessages() string {
	start := max(len(m.Messages)-maxMessages, 0)
	lines := make([]string, 0, maxMessages)
	for _, e := range m.Messages[start:] {
		text := TruncateWithEllipsis(e.Text, max(m.Width-2, 10))
		if e.Err {
			lines = append(lines, styleMessageError.Render(iconError+" "+text))
		} else {
			lines = append(lines, styleMessage.Render("◆ "+text))
		}
	}
	return strings.Join(lines, "\n")
}
