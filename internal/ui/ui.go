package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sdd-engine/sdd/internal/ansi"
	"github.com/sdd-engine/sdd/internal/history"
	"github.com/sdd-engine/sdd/internal/stepper"
	"github.com/sdd-engine/sdd/internal/workflow"
	"github.com/sdd-engine/sdd/internal/workspace"
)

// Printer writes human-readable workflow output. Color is dropped when the
// destination is not a terminal.
type Printer struct {
	w io.Writer
}

// New returns a Printer that writes to stderr.
func New() *Printer {
	return NewWriter(os.Stderr)
}

// NewWriter returns a Printer that writes to w.
func NewWriter(w io.Writer) *Printer {
	return &Printer{w: ansi.NewWriter(w)}
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, ansi.Red+ansi.Bold+"error: "+ansi.Reset+"%s\n", msg)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.w, ansi.Dim+"%s"+ansi.Reset+"\n", msg)
}

// Summary prints the one-line workspace status.
func (p *Printer) Summary(s workspace.Summary) {
	color := ansi.Cyan
	switch s.State {
	case workspace.SummaryAttention:
		color = ansi.Yellow
	case workspace.SummaryComplete, workspace.SummaryReadyToPlan:
		color = ansi.Green
	case workspace.SummaryNoProject, workspace.SummaryNoWorkflows:
		color = ansi.Dim
	}
	fmt.Fprintln(p.w, color+ansi.Bold+s.Text+ansi.Reset)
	if s.Tooltip != "" {
		for _, line := range strings.Split(s.Tooltip, "\n") {
			fmt.Fprintln(p.w, ansi.Dim+"  "+line+ansi.Reset)
		}
	}
}

// Tree prints every workflow in the snapshot with its items nested under
// their epics. Directories that failed to load are listed last.
func (p *Printer) Tree(s *workspace.Snapshot) {
	if s == nil {
		return
	}
	for _, wf := range s.Workflows {
		fmt.Fprintf(p.w, "\n"+ansi.Bold+ansi.Magenta+"◆ %s"+ansi.Reset+ansi.Dim+" (%s phase)"+ansi.Reset+"\n", wf.ID, wf.Phase)
		for _, it := range wf.TopLevel() {
			p.treeItem(wf, it, 1)
		}
	}
	for _, name := range s.Errored {
		fmt.Fprintf(p.w, "\n"+ansi.Red+ansi.Bold+"✗ %s"+ansi.Reset+" Error loading workflow", name)
		if err := s.Failures[name]; err != nil {
			fmt.Fprintf(p.w, ansi.Dim+": %v"+ansi.Reset, err)
		}
		fmt.Fprintln(p.w)
	}
}

func (p *Printer) treeItem(wf *workflow.Workflow, it workflow.Item, depth int) {
	indent := strings.Repeat("  ", depth)
	icon, color := overallIcon(workflow.Overall(it, wf.Items))
	fmt.Fprintf(p.w, "%s"+color+"%s"+ansi.Reset+" %s "+ansi.Dim+"%s"+ansi.Reset+"\n",
		indent, icon, workflow.Label(it), workflow.Describe(it, wf.Items))
	if _, ok := it.(*workflow.EpicItem); !ok {
		return
	}
	for _, child := range wf.Children(it.Common().ID) {
		p.treeItem(wf, child, depth+1)
	}
}

func overallIcon(s workflow.OverallStatus) (icon, color string) {
	switch s {
	case workflow.OverallComplete:
		return "✓", ansi.Green
	case workflow.OverallNeedsAttention:
		return "!", ansi.Yellow
	case workflow.OverallInProgress:
		return "→", ansi.Blue
	default:
		return "○", ansi.Dim
	}
}

// ValidateResult prints the outcome of validating one workflow file.
func (p *Printer) ValidateResult(path string, wf *workflow.Workflow, err error) {
	if err != nil {
		fmt.Fprintf(p.w, ansi.Red+ansi.Bold+"✗ %s"+ansi.Reset+" %v\n", path, err)
		return
	}
	leaves := len(wf.Leaves())
	fmt.Fprintf(p.w, ansi.Green+ansi.Bold+"✓ %s"+ansi.Reset+" workflow %q, %d item(s), %d leaf item(s)\n",
		path, wf.ID, len(wf.Items), leaves)
}

// Notification prints a detected transition.
func (p *Printer) Notification(n workflow.Notification) {
	color := ansi.Cyan
	switch n.Kind {
	case workflow.KindChangesRequested:
		color = ansi.Yellow
	case workflow.KindWorkflowComplete, workflow.KindAllSpecsApproved:
		color = ansi.Green
	}
	fmt.Fprintf(p.w, color+"◆ "+ansi.Reset+"%s", n.Message())
	if path := n.ArtifactPath(); path != "" {
		fmt.Fprintf(p.w, ansi.Dim+" (%s)"+ansi.Reset, path)
	}
	fmt.Fprintln(p.w)
}

// LeafView prints the lifecycle stepper of a leaf.
func (p *Printer) LeafView(v stepper.LeafView) {
	l := v.Leaf
	fmt.Fprintln(p.w, ansi.Bold+ansi.Cyan+v.Heading+ansi.Reset)
	fmt.Fprintf(p.w, ansi.Dim+"  %s · %s · %s"+ansi.Reset+"\n", l.Type, l.WorkflowID, workflow.PhaseLabel(l))

	var steps []string
	for _, s := range v.Steps {
		steps = append(steps, stepColor(s.State)+s.State.Icon()+" "+s.Name+ansi.Reset)
	}
	fmt.Fprintln(p.w, "  "+strings.Join(steps, ansi.Dim+" ── "+ansi.Reset))

	if v.Attention != "" {
		fmt.Fprintln(p.w, ansi.Yellow+ansi.Bold+"  ! "+v.Attention+ansi.Reset)
	}
	if l.Substep != "" {
		fmt.Fprintf(p.w, "  substep:      %s\n", l.Substep)
	}
	if l.Regression != nil {
		fmt.Fprintf(p.w, ansi.Yellow+"  regressed:    %s → %s"+ansi.Reset+" (%s)\n", l.Regression.FromPhase, l.Regression.ToPhase, l.Regression.Reason)
	}
	if len(v.Dependencies) > 0 {
		fmt.Fprintln(p.w, ansi.Dim+"  depends on:"+ansi.Reset)
		for _, d := range v.Dependencies {
			fmt.Fprintf(p.w, "    • %s\n", workflow.Label(d))
		}
	}
	if len(v.Blocking) > 0 {
		fmt.Fprintln(p.w, ansi.Dim+"  blocking:"+ansi.Reset)
		for _, b := range v.Blocking {
			fmt.Fprintf(p.w, "    • %s\n", workflow.Label(b))
		}
	}
	for _, a := range v.Artifacts {
		fmt.Fprintf(p.w, "  %-13s %s\n", a.Label+":", a.Path)
	}
}

// EpicView prints per-phase progress of an epic and its children.
func (p *Printer) EpicView(v stepper.EpicView) {
	fmt.Fprintln(p.w, ansi.Bold+ansi.Magenta+v.Epic.Title+ansi.Reset)
	if len(v.Children) == 0 {
		fmt.Fprintln(p.w, ansi.Dim+"  No items"+ansi.Reset)
		return
	}
	for _, pr := range v.Progress {
		fmt.Fprintf(p.w, "  %-7s %s %d/%d\n", pr.Label, progressBar(pr.Fraction(), 20), pr.Done, pr.Total)
	}
	fmt.Fprintln(p.w, ansi.Dim+"  items:"+ansi.Reset)
	for _, c := range v.Children {
		fmt.Fprintf(p.w, "    %s %s\n", workflow.StatusDots(c), workflow.Label(c))
	}
}

func progressBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	return ansi.Green + strings.Repeat("█", filled) + ansi.Dim + strings.Repeat("░", width-filled) + ansi.Reset
}

func stepColor(s workflow.StepState) string {
	switch s {
	case workflow.StepPassed:
		return ansi.Green
	case workflow.StepActive:
		return ansi.Blue
	case workflow.StepAttention:
		return ansi.Yellow + ansi.Bold
	default:
		return ansi.Dim
	}
}

// History prints recorded notifications, newest first.
func (p *Printer) History(entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, ansi.Dim+"no notifications recorded"+ansi.Reset)
		return
	}
	for _, e := range entries {
		fmt.Fprintf(p.w, ansi.Dim+"%s %-16s"+ansi.Reset+" "+ansi.Cyan+"%-14s"+ansi.Reset+" %s\n",
			e.RecordedAt.Local().Format("2006-01-02 15:04"), "("+humanize.Time(e.RecordedAt)+")",
			e.Notification.WorkflowID, e.Message)
	}
}

// FocusChanged confirms a focus update. A nil ref means the focus was cleared.
func (p *Printer) FocusChanged(ref *workspace.FocusRef) {
	if ref == nil {
		fmt.Fprintln(p.w, ansi.Green+"✓ focus cleared"+ansi.Reset)
		return
	}
	fmt.Fprintf(p.w, ansi.Green+"✓ focused"+ansi.Reset+" %s/%s\n", ref.WorkflowID, ref.ItemID)
}
