package workspace

import (
	"fmt"
	"strings"

	"github.com/sdd-engine/sdd/internal/workflow"
)

// FocusRef identifies the leaf a user has chosen to follow.
type FocusRef struct {
	WorkflowID string `json:"workflowId" toml:"workflow_id"`
	ItemID     string `json:"itemId" toml:"item_id"`
}

// Resolve returns the focused leaf in the snapshot, or nil when the
// workflow or leaf no longer exists.
func (f FocusRef) Resolve(s *Snapshot) *workflow.LeafItem {
	wf := s.Workflow(f.WorkflowID)
	if wf == nil {
		return nil
	}
	for _, l := range wf.Leaves() {
		if l.ID == f.ItemID {
			return l
		}
	}
	return nil
}

// SummaryState classifies the one-line workspace summary.
type SummaryState string

const (
	SummaryNoProject   SummaryState = "no_project"
	SummaryNoWorkflows SummaryState = "no_workflows"
	SummaryAttention   SummaryState = "attention"
	SummaryReadyToPlan SummaryState = "ready_to_plan"
	SummaryComplete    SummaryState = "complete"
	SummaryFocused     SummaryState = "focused"
	SummaryProgress    SummaryState = "progress"
)

const summaryTextPrefix = "SDD: "

// Summary is the one-line workspace status with a multi-line detail.
// FocusStale is set when a focus was given but no longer resolves; callers
// should clear their stored focus.
type Summary struct {
	State      SummaryState `json:"state"`
	Text       string       `json:"text"`
	Tooltip    string       `json:"tooltip"`
	FocusStale bool         `json:"focusStale,omitempty"`
}

// Summarize computes the workspace summary. The first matching rule wins:
// no project, no workflows, items needing attention, all specs approved
// with planning pending, everything reviewed, the focused leaf, and
// otherwise spec and plan counts.
func Summarize(s *Snapshot, focus *FocusRef) Summary {
	if s == nil || !s.HasProject {
		return Summary{State: SummaryNoProject, Text: summaryTextPrefix + "No project", Tooltip: "No .sdd/ directory found"}
	}
	if len(s.Workflows) == 0 {
		return Summary{State: SummaryNoWorkflows, Text: summaryTextPrefix + "No active workflows", Tooltip: "No workflow.yaml files found"}
	}

	leaves := s.Leaves()

	var attention, specReview []*workflow.LeafItem
	for _, l := range leaves {
		if !workflow.NeedsAttention(l) {
			continue
		}
		attention = append(attention, l)
		if l.SpecStatus == workflow.SpecReadyForReview || l.SpecStatus == workflow.SpecNeedsRereview {
			specReview = append(specReview, l)
		}
	}
	if len(attention) > 0 {
		lines := make([]string, len(attention))
		for i, l := range attention {
			lines[i] = l.ChangeID + ": " + l.Title
		}
		text := fmt.Sprintf("%d %s attention", len(attention), plural(len(attention), "item needs", "items need"))
		if len(specReview) > 0 {
			text = fmt.Sprintf("%d %s ready for review", len(specReview), plural(len(specReview), "spec", "specs"))
		}
		return Summary{State: SummaryAttention, Text: summaryTextPrefix + text, Tooltip: strings.Join(lines, "\n")}
	}

	allSpecs := every(leaves, func(l *workflow.LeafItem) bool { return l.SpecStatus == workflow.SpecApproved })
	planPending := count(leaves, func(l *workflow.LeafItem) bool { return l.PlanStatus == workflow.PlanPending }) > 0
	if len(leaves) > 0 && allSpecs && planPending {
		return Summary{State: SummaryReadyToPlan, Text: summaryTextPrefix + "All specs approved, ready to plan", Tooltip: "All specifications are approved"}
	}

	if len(leaves) > 0 && every(leaves, func(l *workflow.LeafItem) bool { return l.ReviewStatus == workflow.ReviewApproved }) {
		return Summary{State: SummaryComplete, Text: summaryTextPrefix + "Workflow complete!", Tooltip: "All items reviewed and approved"}
	}

	stale := false
	if focus != nil {
		if l := focus.Resolve(s); l != nil {
			return Summary{
				State:   SummaryFocused,
				Text:    fmt.Sprintf("%s%s %s (%s)", summaryTextPrefix, l.ChangeID, l.Title, workflow.PhaseLabel(l)),
				Tooltip: fmt.Sprintf("Focused on %s\nWorkflow: %s", l.Title, l.WorkflowID),
			}
		}
		stale = true
	}

	total := len(leaves)
	specced := count(leaves, func(l *workflow.LeafItem) bool { return l.SpecStatus == workflow.SpecApproved })
	planned := count(leaves, func(l *workflow.LeafItem) bool { return l.PlanStatus == workflow.PlanApproved })
	implemented := count(leaves, func(l *workflow.LeafItem) bool { return l.ImplStatus == workflow.ImplComplete })
	reviewed := count(leaves, func(l *workflow.LeafItem) bool { return l.ReviewStatus == workflow.ReviewApproved })

	return Summary{
		State:      SummaryProgress,
		Text:       fmt.Sprintf("%s%d/%d specced, %d/%d planned", summaryTextPrefix, specced, total, planned, total),
		Tooltip:    fmt.Sprintf("Spec: %d/%d\nPlan: %d/%d\nImpl: %d/%d\nReview: %d/%d", specced, total, planned, total, implemented, total, reviewed, total),
		FocusStale: stale,
	}
}

func every(leaves []*workflow.LeafItem, pred func(*workflow.LeafItem) bool) bool {
	for _, l := range leaves {
		if !pred(l) {
			return false
		}
	}
	return true
}

func count(leaves []*workflow.LeafItem, pred func(*workflow.LeafItem) bool) int {
	n := 0
	for _, l := range leaves {
		if pred(l) {
			n++
		}
	}
	return n
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
