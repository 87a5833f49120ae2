package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sdd-engine/sdd/internal/stepper"
	"github.com/sdd-engine/sdd/internal/workflow"
)

// DetailPanel wraps a viewport for scrollable content display.
type DetailPanel struct {
	viewport   viewport.Model
	title      string
	totalLines int
	emptyHint  string
}

// NewDetailPanel creates a detail panel with the given dimensions.
func NewDetailPanel(width, height int) DetailPanel {
	vp := viewport.New(width, height)
	vp.SetContent("")
	return DetailPanel{viewport: vp}
}

// SetSize updates the viewport dimensions.
func (d *DetailPanel) SetSize(width, height int) {
	d.viewport.Width = width
	d.viewport.Height = height
}

// SetContent updates the displayed text and title. The scroll position is
// kept when the title is unchanged so refreshes do not jump to the top.
func (d *DetailPanel) SetContent(title, content string) {
	sameItem := title == d.title && d.emptyHint == ""
	d.title = title
	d.emptyHint = ""
	d.totalLines = strings.Count(content, "\n") + 1
	d.viewport.SetContent(content)
	if !sameItem {
		d.viewport.GotoTop()
	}
}

// SetEmpty sets the detail panel to show an empty-state hint.
func (d *DetailPanel) SetEmpty(hint string) {
	d.title = ""
	d.emptyHint = hint
	d.totalLines = 0
	d.viewport.SetContent("")
	d.viewport.GotoTop()
}

// Title returns the current title.
func (d DetailPanel) Title() string {
	return d.title
}

// Update handles viewport scroll messages.
func (d *DetailPanel) Update(msg tea.Msg) {
	d.viewport, _ = d.viewport.Update(msg)
}

// ScrollUp scrolls the content up by half a page.
func (d *DetailPanel) ScrollUp() {
	d.viewport.SetYOffset(d.viewport.YOffset - d.viewport.Height/2)
}

// ScrollDown scrolls the content down by half a page.
func (d *DetailPanel) ScrollDown() {
	d.viewport.SetYOffset(d.viewport.YOffset + d.viewport.Height/2)
}

// View renders the detail panel with a rounded border and scroll indicators.
func (d DetailPanel) View() string {
	if d.emptyHint != "" {
		return styleDetailBorder.Render(styleDetailDim.Render(d.emptyHint))
	}

	var b strings.Builder
	if d.title != "" {
		b.WriteString(styleDetailTitle.Render(d.title))
		b.WriteString("\n")
	}
	if upMore := d.linesAbove(); upMore > 0 {
		b.WriteString(styleScrollIndicator.Render(fmt.Sprintf("↑ %d more", upMore)))
		b.WriteString("\n")
	}
	b.WriteString(d.viewport.View())
	if downMore := d.linesBelow(); downMore > 0 {
		b.WriteString("\n")
		b.WriteString(styleScrollIndicator.Render(fmt.Sprintf("↓ %d more", downMore)))
	}
	return styleDetailBorder.Render(b.String())
}

func (d DetailPanel) linesAbove() int {
	return d.viewport.YOffset
}

func (d DetailPanel) linesBelow() int {
	below := d.totalLines - d.viewport.YOffset - d.viewport.Height
	if below < 0 {
		return 0
	}
	return below
}

// --- Formatting helpers ---

func field(label, value string) string {
	return styleDetailLabel.Render(label+": ") + styleDetailValue.Render(value)
}

// FormatLeaf renders the lifecycle stepper of a leaf.
func FormatLeaf(v stepper.LeafView) string {
	l := v.Leaf
	var b strings.Builder

	b.WriteString(field("type", string(l.Type)))
	b.WriteString("  ")
	b.WriteString(field("status", workflow.PhaseLabel(l)))
	b.WriteString("\n\n")

	steps := make([]string, len(v.Steps))
	for i, s := range v.Steps {
		steps[i] = stepStyle(s.State).Render(s.State.Icon() + " " + s.Name)
	}
	b.WriteString(strings.Join(steps, styleDetailDim.Render(" ── ")))
	b.WriteString("\n")

	if v.Attention != "" {
		b.WriteString("\n")
		b.WriteString(styleDetailBanner.Render("! " + v.Attention))
		b.WriteString("\n")
	}
	if l.Substep != "" {
		b.WriteString("\n")
		b.WriteString(field("substep", l.Substep))
		b.WriteString("\n")
	}
	if r := l.Regression; r != nil {
		b.WriteString("\n")
		b.WriteString(styleDetailBanner.Render(fmt.Sprintf("Regressed %s → %s", r.FromPhase, r.ToPhase)))
		b.WriteString("\n")
		if r.Reason != "" {
			b.WriteString(field("reason", r.Reason))
			b.WriteString("\n")
		}
		for _, pw := range r.PreservedWork {
			b.WriteString(styleDetailDim.Render(fmt.Sprintf("  kept %s (%s)", pw.Path, pw.Type)))
			b.WriteString("\n")
		}
	}

	if len(v.Dependencies) > 0 {
		b.WriteString("\n")
		b.WriteString(styleDetailLabel.Render("Depends on"))
		b.WriteString("\n")
		for _, d := range v.Dependencies {
			b.WriteString("  • " + workflow.Label(d) + "\n")
		}
	}
	if len(v.Blocking) > 0 {
		b.WriteString("\n")
		b.WriteString(styleDetailLabel.Render("Blocking"))
		b.WriteString("\n")
		for _, bl := range v.Blocking {
			b.WriteString("  • " + workflow.Label(bl) + "\n")
		}
	}

	b.WriteString("\n")
	for _, a := range v.Artifacts {
		b.WriteString(field(a.Label, a.Path))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatEpic renders per-phase progress of an epic and its child leaves.
func FormatEpic(v stepper.EpicView, width int) string {
	if len(v.Children) == 0 {
		return styleDetailDim.Render("No items")
	}
	barWidth := width - 20
	if barWidth > 30 {
		barWidth = 30
	}
	if barWidth < 5 {
		barWidth = 5
	}

	var b strings.Builder
	for _, p := range v.Progress {
		filled := int(p.Fraction() * float64(barWidth))
		bar := styleProgressFill.Render(strings.Repeat("█", filled)) +
			styleProgressEmpty.Render(strings.Repeat("░", barWidth-filled))
		b.WriteString(fmt.Sprintf("%-7s %s %d/%d\n", p.Label, bar, p.Done, p.Total))
	}
	b.WriteString("\n")
	for _, c := range v.Children {
		b.WriteString(styleDetailDim.Render(workflow.StatusDots(c)) + "  " + workflow.Label(c) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatWorkflow renders the workflow header and its advisory counters.
func FormatWorkflow(wf *workflow.Workflow) string {
	var b strings.Builder
	b.WriteString(field("phase", string(wf.Phase)))
	if wf.Step != "" {
		b.WriteString("  ")
		b.WriteString(field("step", wf.Step))
	}
	b.WriteString("  ")
	b.WriteString(field("source", string(wf.Source)))
	b.WriteString("\n\n")

	p := wf.Progress
	rows := []struct {
		label string
		n     int
	}{
		{"total items", p.TotalItems},
		{"specs completed", p.SpecsCompleted},
		{"specs pending", p.SpecsPending},
		{"plans completed", p.PlansCompleted},
		{"plans pending", p.PlansPending},
		{"implemented", p.Implemented},
		{"reviewed", p.Reviewed},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%s %d\n", styleDetailLabel.Render(fmt.Sprintf("%-16s", r.label)), r.n))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatErrored renders a workflow directory that failed to load.
func FormatErrored(name string, err error) string {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return styleRowFailed.Render("Error loading workflow "+name) + "\n\n" + msg
}

func stepStyle(s workflow.StepState) lipgloss.Style {
	switch s {
	case workflow.StepPassed:
		return styleRowDone
	case workflow.StepActive:
		return styleRowWorking
	case workflow.StepAttention:
		return styleRowAttention
	default:
		return styleRowMeta
	}
}
