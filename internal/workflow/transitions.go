package workflow

import (
	"fmt"
	"path"
)

// NotificationKind identifies a user-facing workflow event.
type NotificationKind string

// Notification kinds.
const (
	KindSpecReadyForReview     NotificationKind = "spec_ready_for_review"
	KindAllSpecsApproved       NotificationKind = "all_specs_approved"
	KindImplementationComplete NotificationKind = "implementation_complete"
	KindChangesRequested       NotificationKind = "changes_requested"
	KindWorkflowComplete       NotificationKind = "workflow_complete"
)

// Notification is a transition detected between two snapshots. ItemTitle and
// ItemLocation are empty for workflow-level kinds.
type Notification struct {
	Kind         NotificationKind `json:"type"`
	WorkflowID   string           `json:"workflowId"`
	ItemTitle    string           `json:"itemTitle,omitempty"`
	ItemLocation string           `json:"itemLocation,omitempty"`
}

// Message renders the notification as user-facing text.
func (n Notification) Message() string {
	switch n.Kind {
	case KindSpecReadyForReview:
		return fmt.Sprintf("Spec for %q is ready for review", n.ItemTitle)
	case KindAllSpecsApproved:
		return fmt.Sprintf("All specs approved in workflow %s, ready to plan", n.WorkflowID)
	case KindImplementationComplete:
		return fmt.Sprintf("Implementation of %q is complete, ready for review", n.ItemTitle)
	case KindChangesRequested:
		return fmt.Sprintf("Changes requested on %q", n.ItemTitle)
	case KindWorkflowComplete:
		return fmt.Sprintf("Workflow %s complete!", n.WorkflowID)
	default:
		return string(n.Kind)
	}
}

// ArtifactPath returns the workspace-relative file a notification points at,
// or "" when it has none. Only spec-ready notifications link to an artifact.
func (n Notification) ArtifactPath() string {
	if n.Kind != KindSpecReadyForReview || n.ItemLocation == "" {
		return ""
	}
	return path.Join(n.ItemLocation, SpecFileName)
}

// DetectTransitions compares two snapshots and reports the edges that
// occurred between them. Workflows are visited in current order; item
// notifications for a workflow precede its aggregate notifications.
// Workflows or leaves present on only one side produce nothing.
func DetectTransitions(previous, current []*Workflow) []Notification {
	prevByID := make(map[string]*Workflow, len(previous))
	for _, wf := range previous {
		if _, seen := prevByID[wf.ID]; !seen {
			prevByID[wf.ID] = wf
		}
	}

	var out []Notification
	for _, curr := range current {
		prev, ok := prevByID[curr.ID]
		if !ok {
			continue
		}
		out = append(out, itemTransitions(prev, curr)...)
		out = append(out, aggregateTransitions(prev, curr)...)
	}
	return out
}

func itemTransitions(prev, curr *Workflow) []Notification {
	prevLeaves := make(map[string]*LeafItem)
	for _, leaf := range prev.Leaves() {
		if _, seen := prevLeaves[leaf.ID]; !seen {
			prevLeaves[leaf.ID] = leaf
		}
	}

	var out []Notification
	for _, c := range curr.Leaves() {
		p, ok := prevLeaves[c.ID]
		if !ok {
			continue
		}
		notify := func(kind NotificationKind) {
			out = append(out, Notification{
				Kind:         kind,
				WorkflowID:   curr.ID,
				ItemTitle:    c.Title,
				ItemLocation: c.Location,
			})
		}
		if p.SpecStatus != SpecReadyForReview && c.SpecStatus == SpecReadyForReview {
			notify(KindSpecReadyForReview)
		}
		if p.ImplStatus != ImplComplete && c.ImplStatus == ImplComplete {
			notify(KindImplementationComplete)
		}
		if p.ReviewStatus != ReviewChangesRequested && c.ReviewStatus == ReviewChangesRequested {
			notify(KindChangesRequested)
		}
	}
	return out
}

func aggregateTransitions(prev, curr *Workflow) []Notification {
	var out []Notification
	if !AllSpecsApproved(prev) && AllSpecsApproved(curr) {
		out = append(out, Notification{Kind: KindAllSpecsApproved, WorkflowID: curr.ID})
	}
	if !AllReviewsApproved(prev) && AllReviewsApproved(curr) {
		out = append(out, Notification{Kind: KindWorkflowComplete, WorkflowID: curr.ID})
	}
	return out
}

// AllSpecsApproved reports whether the workflow has at least one leaf and
// every leaf's spec is approved.
func AllSpecsApproved(wf *Workflow) bool {
	return allLeaves(wf, func(l *LeafItem) bool { return l.SpecStatus == SpecApproved })
}

// AllReviewsApproved reports whether the workflow has at least one leaf and
// every leaf's review is approved.
func AllReviewsApproved(wf *Workflow) bool {
	return allLeaves(wf, func(l *LeafItem) bool { return l.ReviewStatus == ReviewApproved })
}

func allLeaves(wf *Workflow, pred func(*LeafItem) bool) bool {
	leaves := wf.Leaves()
	if len(leaves) == 0 {
		return false
	}
	for _, l := range leaves {
		if !pred(l) {
			return false
		}
	}
	return true
}
