package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sdd-engine/sdd/internal/workflow"
	"github.com/sdd-engine/sdd/internal/workspace"
)

// rowKind distinguishes the three kinds of tree rows.
type rowKind int

const (
	rowWorkflow rowKind = iota
	rowItem
	rowErrored
)

// treeRow is one visible line of the workflow tree.
type treeRow struct {
	Kind     rowKind
	Workflow *workflow.Workflow
	Item     workflow.Item
	Depth    int
	Errored  string // directory name for rowErrored
	Err      error
}

// key identifies a row across snapshot rebuilds.
func (r treeRow) key() string {
	switch r.Kind {
	case rowWorkflow:
		return "wf:" + r.Workflow.ID
	case rowErrored:
		return "err:" + r.Errored
	default:
		return "item:" + r.Workflow.ID + "/" + r.Item.Common().ID
	}
}

func (r *treeRow) isEpic() bool {
	if r.Kind != rowItem {
		return false
	}
	_, ok := r.Item.(*workflow.EpicItem)
	return ok
}

func (r *treeRow) leaf() *workflow.LeafItem {
	if r.Kind != rowItem {
		return nil
	}
	l, _ := r.Item.(*workflow.LeafItem)
	return l
}

func (r *treeRow) hasPlan() bool {
	l := r.leaf()
	return l != nil && workflow.HasPlan(l)
}

// TreeView renders workflows, their items and load errors as a navigable
// tree. Epics start expanded; collapsed epics hide their descendants.
type TreeView struct {
	Rows      []treeRow
	Cursor    int
	Width     int
	Height    int
	collapsed map[string]bool
	offset    int
}

// NewTreeView creates an empty tree.
func NewTreeView() TreeView {
	return TreeView{collapsed: make(map[string]bool)}
}

// SetSnapshot rebuilds the rows, keeping the cursor on the same row when it
// still exists.
func (t *TreeView) SetSnapshot(s *workspace.Snapshot) {
	var selected string
	if r := t.Selected(); r != nil {
		selected = r.key()
	}

	t.Rows = t.Rows[:0]
	if s != nil {
		for _, wf := range s.Workflows {
			t.Rows = append(t.Rows, treeRow{Kind: rowWorkflow, Workflow: wf})
			for _, it := range wf.TopLevel() {
				t.appendItem(wf, it, 1)
			}
		}
		for _, name := range s.Errored {
			t.Rows = append(t.Rows, treeRow{Kind: rowErrored, Errored: name, Err: s.Failures[name]})
		}
	}

	t.Cursor = 0
	for i, r := range t.Rows {
		if r.key() == selected {
			t.Cursor = i
			break
		}
	}
	t.clampOffset()
}

func (t *TreeView) appendItem(wf *workflow.Workflow, it workflow.Item, depth int) {
	row := treeRow{Kind: rowItem, Workflow: wf, Item: it, Depth: depth}
	t.Rows = append(t.Rows, row)
	if !row.isEpic() || t.collapsed[row.key()] {
		return
	}
	for _, child := range wf.Children(it.Common().ID) {
		t.appendItem(wf, child, depth+1)
	}
}

// Selected returns the row under the cursor, or nil for an empty tree.
func (t *TreeView) Selected() *treeRow {
	if t.Cursor < 0 || t.Cursor >= len(t.Rows) {
		return nil
	}
	return &t.Rows[t.Cursor]
}

// MoveUp moves the cursor up one row.
func (t *TreeView) MoveUp() {
	if t.Cursor > 0 {
		t.Cursor--
	}
	t.clampOffset()
}

// MoveDown moves the cursor down one row.
func (t *TreeView) MoveDown() {
	if t.Cursor < len(t.Rows)-1 {
		t.Cursor++
	}
	t.clampOffset()
}

// Toggle expands or collapses the selected epic and reports whether the
// tree changed. The caller rebuilds rows with SetSnapshot.
func (t *TreeView) Toggle() bool {
	r := t.Selected()
	if r == nil || !r.isEpic() {
		return false
	}
	if t.collapsed == nil {
		t.collapsed = make(map[string]bool)
	}
	k := r.key()
	t.collapsed[k] = !t.collapsed[k]
	return true
}

// Collapsed reports whether the epic row with key k is collapsed.
func (t *TreeView) Collapsed(k string) bool {
	return t.collapsed[k]
}

func (t *TreeView) clampOffset() {
	if t.Height <= 0 {
		t.offset = 0
		return
	}
	if t.Cursor < t.offset {
		t.offset = t.Cursor
	}
	if t.Cursor >= t.offset+t.Height {
		t.offset = t.Cursor - t.Height + 1
	}
}

// View renders the visible rows. focus marks the focused leaf.
func (t TreeView) View(focus *workspace.FocusRef) string {
	if len(t.Rows) == 0 {
		return styleDetailDim.Render("  No workflows found under .sdd/workflows")
	}

	end := len(t.Rows)
	if t.Height > 0 && t.offset+t.Height < end {
		end = t.offset + t.Height
	}

	var b strings.Builder
	for i := t.offset; i < end; i++ {
		if i > t.offset {
			b.WriteString("\n")
		}
		b.WriteString(t.renderRow(t.Rows[i], i == t.Cursor, focus))
	}
	return b.String()
}

func (t TreeView) renderRow(r treeRow, selected bool, focus *workspace.FocusRef) string {
	prefix := "  "
	if selected {
		prefix = styleSelectionIndicator.Render(selectionIndicator) + " "
	}
	indent := strings.Repeat("  ", r.Depth)

	var line string
	switch r.Kind {
	case rowWorkflow:
		line = styleRowWorkflow.Render(r.Workflow.ID) + " " + styleRowMeta.Render(string(r.Workflow.Phase)+" phase")
	case rowErrored:
		line = styleRowFailed.Render(iconError+" "+r.Errored) + " " + styleRowMeta.Render("Error loading workflow")
	default:
		line = t.renderItem(r, focus)
	}

	width := t.Width - 4 - len(indent)
	if width > 0 && !selected {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	out := prefix + indent + line
	if selected {
		return padToWidth(styleRowSelected.Render(out), t.Width, colorSurfaceBright)
	}
	return out
}

func (t TreeView) renderItem(r treeRow, focus *workspace.FocusRef) string {
	all := r.Workflow.Items
	marker := " "
	if r.isEpic() {
		marker = iconExpanded
		if t.collapsed[r.key()] {
			marker = iconCollapsed
		}
	}

	label := workflow.Label(r.Item)
	style := statusStyle(workflow.Overall(r.Item, all))
	text := marker + " " + style.Render(label) + "  " + styleRowMeta.Render(workflow.Describe(r.Item, all))
	if l := r.leaf(); l != nil && focus != nil && focus.WorkflowID == l.WorkflowID && focus.ItemID == l.ID {
		text += " " + styleRowAttention.Render(iconFocus)
	}
	return text
}

func statusStyle(s workflow.OverallStatus) lipgloss.Style {
	switch s {
	case workflow.OverallComplete:
		return styleRowDone
	case workflow.OverallNeedsAttention:
		return styleRowAttention
	case workflow.OverallInProgress:
		return styleRowWorking
	default:
		return styleRowNormal
	}
}
