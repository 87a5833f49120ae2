package workflow

import (
	"fmt"
	"path"
	"strings"
)

// Artifact file names inside a leaf's location directory.
const (
	SpecFileName = "SPEC.md"
	PlanFileName = "PLAN.md"
)

// StepState is the display state of one lifecycle step.
type StepState string

const (
	StepPassed    StepState = "passed"
	StepActive    StepState = "active"
	StepAttention StepState = "attention"
	StepPending   StepState = "pending"
)

// Icon returns the stepper glyph for the state.
func (s StepState) Icon() string {
	switch s {
	case StepPassed:
		return "✓"
	case StepActive:
		return "→"
	case StepAttention:
		return "!"
	default:
		return "○"
	}
}

// Dot returns the compact tree glyph for the state.
func (s StepState) Dot() string {
	switch s {
	case StepPassed:
		return "●"
	case StepActive:
		return "◉"
	case StepAttention:
		return "◈"
	default:
		return "○"
	}
}

// StepNames labels the four lifecycle steps in order.
var StepNames = [4]string{"Spec", "Plan", "Implement", "Review"}

// StepStates maps a leaf's statuses onto the spec, plan, implement and
// review steps.
func StepStates(l *LeafItem) [4]StepState {
	var s [4]StepState

	switch l.SpecStatus {
	case SpecApproved:
		s[0] = StepPassed
	case SpecInProgress:
		s[0] = StepActive
	case SpecReadyForReview, SpecNeedsRereview:
		s[0] = StepAttention
	default:
		s[0] = StepPending
	}

	switch l.PlanStatus {
	case PlanApproved:
		s[1] = StepPassed
	case PlanInProgress:
		s[1] = StepActive
	default:
		s[1] = StepPending
	}

	switch l.ImplStatus {
	case ImplComplete:
		s[2] = StepPassed
	case ImplInProgress:
		s[2] = StepActive
	default:
		s[2] = StepPending
	}

	switch l.ReviewStatus {
	case ReviewApproved:
		s[3] = StepPassed
	case ReviewChangesRequested:
		s[3] = StepAttention
	case ReviewReadyForReview:
		s[3] = StepActive
	default:
		s[3] = StepPending
	}
	return s
}

// StatusDots renders the four step states as tree dots.
func StatusDots(l *LeafItem) string {
	states := StepStates(l)
	dots := make([]string, len(states))
	for i, st := range states {
		dots[i] = st.Dot()
	}
	return strings.Join(dots, " ")
}

// StepIcons renders the four step states as stepper icons.
func StepIcons(l *LeafItem) string {
	states := StepStates(l)
	icons := make([]string, len(states))
	for i, st := range states {
		icons[i] = st.Icon()
	}
	return strings.Join(icons, " ")
}

// NeedsAttention reports whether a human is expected to act on the leaf.
func NeedsAttention(l *LeafItem) bool {
	return l.SpecStatus == SpecReadyForReview ||
		l.SpecStatus == SpecNeedsRereview ||
		l.ReviewStatus == ReviewChangesRequested
}

// AttentionMessage explains why the leaf needs attention, or returns "".
func AttentionMessage(l *LeafItem) string {
	switch {
	case l.SpecStatus == SpecReadyForReview:
		return "Spec is ready for your review"
	case l.SpecStatus == SpecNeedsRereview:
		return "Spec needs re-review after upstream change"
	case l.ReviewStatus == ReviewChangesRequested:
		return "Changes were requested during review"
	default:
		return ""
	}
}

// PhaseLabel names the furthest lifecycle point the leaf has reached.
func PhaseLabel(l *LeafItem) string {
	switch {
	case l.ReviewStatus == ReviewApproved:
		return "Complete"
	case l.ReviewStatus == ReviewChangesRequested:
		return "Changes requested"
	case l.ReviewStatus == ReviewReadyForReview:
		return "In review"
	case l.ImplStatus == ImplComplete:
		return "Impl complete"
	case l.ImplStatus == ImplInProgress:
		return "Implementing"
	case l.PlanStatus == PlanApproved:
		return "Planned"
	case l.PlanStatus == PlanInProgress:
		return "Planning"
	case l.SpecStatus == SpecApproved:
		return "Spec approved"
	case l.SpecStatus == SpecReadyForReview, l.SpecStatus == SpecNeedsRereview:
		return "Spec review"
	case l.SpecStatus == SpecInProgress:
		return "Speccing"
	default:
		return "Pending"
	}
}

// OverallStatus summarizes an item for tree display.
type OverallStatus string

const (
	OverallComplete       OverallStatus = "complete"
	OverallInProgress     OverallStatus = "in_progress"
	OverallNeedsAttention OverallStatus = "needs_attention"
	OverallPending        OverallStatus = "pending"
)

// Overall computes the overall status of an item. Epics are judged by their
// direct leaf children; an epic with none is pending.
func Overall(it Item, all []Item) OverallStatus {
	switch v := it.(type) {
	case *LeafItem:
		return overallOf([]*LeafItem{v})
	case *EpicItem:
		return overallOf(ChildLeaves(v.ID, all))
	default:
		return OverallPending
	}
}

func overallOf(leaves []*LeafItem) OverallStatus {
	if len(leaves) == 0 {
		return OverallPending
	}
	complete := true
	for _, l := range leaves {
		if l.ReviewStatus != ReviewApproved {
			complete = false
			break
		}
	}
	if complete {
		return OverallComplete
	}
	for _, l := range leaves {
		if NeedsAttention(l) {
			return OverallNeedsAttention
		}
	}
	for _, l := range leaves {
		if l.SpecStatus == SpecInProgress || l.PlanStatus == PlanInProgress || l.ImplStatus == ImplInProgress {
			return OverallInProgress
		}
	}
	return OverallPending
}

// ChildLeaves returns the leaves whose immediate parent is epicID.
func ChildLeaves(epicID string, all []Item) []*LeafItem {
	var out []*LeafItem
	for _, it := range all {
		if l, ok := it.(*LeafItem); ok && l.ParentID == epicID {
			out = append(out, l)
		}
	}
	return out
}

// Label is the tree label of an item: the change id prefixes leaf titles.
func Label(it Item) string {
	if l, ok := it.(*LeafItem); ok {
		return l.ChangeID + ": " + l.Title
	}
	return it.Common().Title
}

// Describe returns the short status description shown beside an item.
func Describe(it Item, all []Item) string {
	switch v := it.(type) {
	case *LeafItem:
		return StatusDots(v)
	case *EpicItem:
		children := ChildLeaves(v.ID, all)
		if len(children) == 0 {
			return "No items"
		}
		complete := 0
		for _, c := range children {
			if c.ReviewStatus == ReviewApproved {
				complete++
			}
		}
		return fmt.Sprintf("%d/%d complete", complete, len(children))
	default:
		return ""
	}
}

// ContextFlags lists the capabilities of an item for action menus:
// isLeaf, hasLocation, hasPlan. Epics have none.
func ContextFlags(it Item) []string {
	l, ok := it.(*LeafItem)
	if !ok {
		return nil
	}
	flags := []string{"isLeaf"}
	if l.Location != "" {
		flags = append(flags, "hasLocation")
	}
	if HasPlan(l) {
		flags = append(flags, "hasPlan")
	}
	return flags
}

// HasPlan reports whether planning has started, so PLAN.md is expected.
func HasPlan(l *LeafItem) bool {
	return l.PlanStatus != PlanPending
}

// SpecPath returns the workspace-relative path of the leaf's SPEC.md.
func SpecPath(l *LeafItem) string {
	return path.Join(l.Location, SpecFileName)
}

// PlanPath returns the workspace-relative path of the leaf's PLAN.md.
func PlanPath(l *LeafItem) string {
	return path.Join(l.Location, PlanFileName)
}
