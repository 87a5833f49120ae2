package stepper

import "github.com/sdd-engine/sdd/internal/workflow"

// Step is one lifecycle step of a leaf.
type Step struct {
	Name  string
	State workflow.StepState
}

// Artifact is a file the user can open from the stepper.
type Artifact struct {
	Label string
	Path  string // workspace-relative
}

// LeafView is the display model of a leaf item.
type LeafView struct {
	Leaf         *workflow.LeafItem
	Heading      string
	Steps        [4]Step
	Attention    string
	Dependencies []workflow.Item
	Blocking     []*workflow.LeafItem
	Artifacts    []Artifact
}

// PhaseProgress counts how many of an epic's leaves finished a phase.
type PhaseProgress struct {
	Label string
	Done  int
	Total int
}

// Fraction returns Done/Total, or 0 for an empty epic.
func (p PhaseProgress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}

// EpicView is the display model of an epic item.
type EpicView struct {
	Epic     *workflow.EpicItem
	Progress [4]PhaseProgress
	Children []*workflow.LeafItem
}

// BuildLeaf assembles the view of a leaf. Dependencies that do not resolve
// within all are dropped.
func BuildLeaf(l *workflow.LeafItem, all []workflow.Item) LeafView {
	v := LeafView{
		Leaf:      l,
		Heading:   workflow.Label(l),
		Attention: workflow.AttentionMessage(l),
	}

	states := workflow.StepStates(l)
	for i := range states {
		v.Steps[i] = Step{Name: workflow.StepNames[i], State: states[i]}
	}

	byID := make(map[string]workflow.Item, len(all))
	for _, it := range all {
		if _, seen := byID[it.Common().ID]; !seen {
			byID[it.Common().ID] = it
		}
	}
	for _, dep := range l.DependsOn {
		if it, ok := byID[dep]; ok {
			v.Dependencies = append(v.Dependencies, it)
		}
	}

	for _, it := range all {
		other, ok := it.(*workflow.LeafItem)
		if !ok {
			continue
		}
		for _, dep := range other.DependsOn {
			if dep == l.ID {
				v.Blocking = append(v.Blocking, other)
				break
			}
		}
	}

	v.Artifacts = []Artifact{{Label: "View Spec", Path: workflow.SpecPath(l)}}
	if workflow.HasPlan(l) {
		v.Artifacts = append(v.Artifacts, Artifact{Label: "View Plan", Path: workflow.PlanPath(l)})
	}
	return v
}

// BuildEpic assembles the view of an epic from its direct leaf children.
func BuildEpic(e *workflow.EpicItem, all []workflow.Item) EpicView {
	children := workflow.ChildLeaves(e.ID, all)
	v := EpicView{Epic: e, Children: children}

	total := len(children)
	v.Progress = [4]PhaseProgress{
		{Label: "Spec", Total: total},
		{Label: "Plan", Total: total},
		{Label: "Impl", Total: total},
		{Label: "Review", Total: total},
	}
	for _, c := range children {
		if c.SpecStatus == workflow.SpecApproved {
			v.Progress[0].Done++
		}
		if c.PlanStatus == workflow.PlanApproved {
			v.Progress[1].Done++
		}
		if c.ImplStatus == workflow.ImplComplete {
			v.Progress[2].Done++
		}
		if c.ReviewStatus == workflow.ReviewApproved {
			v.Progress[3].Done++
		}
	}
	return v
}
