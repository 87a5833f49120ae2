package workflow

// SpecStatus is the lifecycle state of an item's specification.
type SpecStatus string

// Spec status values.
const (
	SpecPending        SpecStatus = "pending"
	SpecInProgress     SpecStatus = "in_progress"
	SpecReadyForReview SpecStatus = "ready_for_review"
	SpecApproved       SpecStatus = "approved"
	SpecNeedsRereview  SpecStatus = "needs_rereview"
)

// ValidSpecStatuses is the closed set of spec status values.
var ValidSpecStatuses = map[SpecStatus]bool{
	SpecPending:        true,
	SpecInProgress:     true,
	SpecReadyForReview: true,
	SpecApproved:       true,
	SpecNeedsRereview:  true,
}

// IsValid reports whether s is a member of the spec status set.
func (s SpecStatus) IsValid() bool { return ValidSpecStatuses[s] }

// PlanStatus is the lifecycle state of an item's implementation plan.
type PlanStatus string

// Plan status values.
const (
	PlanPending    PlanStatus = "pending"
	PlanInProgress PlanStatus = "in_progress"
	PlanApproved   PlanStatus = "approved"
)

// ValidPlanStatuses is the closed set of plan status values.
var ValidPlanStatuses = map[PlanStatus]bool{
	PlanPending:    true,
	PlanInProgress: true,
	PlanApproved:   true,
}

// IsValid reports whether s is a member of the plan status set.
func (s PlanStatus) IsValid() bool { return ValidPlanStatuses[s] }

// ImplStatus is the lifecycle state of an item's implementation.
type ImplStatus string

// Implementation status values.
const (
	ImplPending    ImplStatus = "pending"
	ImplInProgress ImplStatus = "in_progress"
	ImplComplete   ImplStatus = "complete"
)

// ValidImplStatuses is the closed set of implementation status values.
var ValidImplStatuses = map[ImplStatus]bool{
	ImplPending:    true,
	ImplInProgress: true,
	ImplComplete:   true,
}

// IsValid reports whether s is a member of the implementation status set.
func (s ImplStatus) IsValid() bool { return ValidImplStatuses[s] }

// ReviewStatus is the lifecycle state of an item's review.
type ReviewStatus string

// Review status values.
const (
	ReviewPending          ReviewStatus = "pending"
	ReviewReadyForReview   ReviewStatus = "ready_for_review"
	ReviewApproved         ReviewStatus = "approved"
	ReviewChangesRequested ReviewStatus = "changes_requested"
)

// ValidReviewStatuses is the closed set of review status values.
var ValidReviewStatuses = map[ReviewStatus]bool{
	ReviewPending:          true,
	ReviewReadyForReview:   true,
	ReviewApproved:         true,
	ReviewChangesRequested: true,
}

// IsValid reports whether s is a member of the review status set.
func (s ReviewStatus) IsValid() bool { return ValidReviewStatuses[s] }

// Phase is the workflow-level stage.
type Phase string

// Workflow phases.
const (
	PhaseSpec      Phase = "spec"
	PhasePlan      Phase = "plan"
	PhaseImplement Phase = "implement"
	PhaseReview    Phase = "review"
)

// ValidPhases is the closed set of workflow phases.
var ValidPhases = map[Phase]bool{
	PhaseSpec:      true,
	PhasePlan:      true,
	PhaseImplement: true,
	PhaseReview:    true,
}

// IsValid reports whether p is a member of the phase set.
func (p Phase) IsValid() bool { return ValidPhases[p] }

// ItemType classifies a work item. Every type except TypeEpic is a leaf.
type ItemType string

// Item types.
const (
	TypeEpic           ItemType = "epic"
	TypeFeature        ItemType = "feature"
	TypeBugfix         ItemType = "bugfix"
	TypeRefactor       ItemType = "refactor"
	TypeInfrastructure ItemType = "infrastructure"
)

// ValidItemTypes is the closed set of item types.
var ValidItemTypes = map[ItemType]bool{
	TypeEpic:           true,
	TypeFeature:        true,
	TypeBugfix:         true,
	TypeRefactor:       true,
	TypeInfrastructure: true,
}

// IsValid reports whether t is a member of the item type set.
func (t ItemType) IsValid() bool { return ValidItemTypes[t] }

// Source records how a workflow was created.
type Source string

// Workflow sources.
const (
	SourceExternal    Source = "external"
	SourceInteractive Source = "interactive"
)

// Progress holds the advisory counters written by the workflow producer.
// They are carried as-is and never re-derived from the items.
type Progress struct {
	TotalItems     int `json:"total_items"`
	SpecsCompleted int `json:"specs_completed"`
	SpecsPending   int `json:"specs_pending"`
	PlansCompleted int `json:"plans_completed"`
	PlansPending   int `json:"plans_pending"`
	Implemented    int `json:"implemented"`
	Reviewed       int `json:"reviewed"`
}

// PreservedWork describes an artifact kept across a phase regression.
type PreservedWork struct {
	Path        string `json:"path"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Regression records that a leaf was sent back to an earlier phase.
type Regression struct {
	FromPhase     string          `json:"from_phase"`
	ToPhase       string          `json:"to_phase"`
	Reason        string          `json:"reason"`
	Timestamp     string          `json:"timestamp"`
	PreservedWork []PreservedWork `json:"preserved_work,omitempty"`
}

// Item is a flattened work item: either *EpicItem or *LeafItem.
type Item interface {
	// Common returns the fields shared by every item variant.
	Common() ItemBase
	isItem()
}

// ItemBase holds the fields shared by epics and leaves.
type ItemBase struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Type            ItemType `json:"type"`
	WorkflowID      string   `json:"workflowId"`
	ParentID        string   `json:"parentId,omitempty"`
	DependsOn       []string `json:"dependsOn,omitempty"`
	ContextSections []string `json:"contextSections,omitempty"`
}

// Common returns a copy of the shared fields.
func (b ItemBase) Common() ItemBase { return b }

// EpicItem groups child items. Children are referenced by id only.
type EpicItem struct {
	ItemBase
	ChildIDs []string `json:"childIds"`
}

func (*EpicItem) isItem() {}

// LeafItem is an item that moves through the four-phase lifecycle.
type LeafItem struct {
	ItemBase
	ChangeID     string       `json:"changeId"`
	Location     string       `json:"location"`
	SpecStatus   SpecStatus   `json:"specStatus"`
	PlanStatus   PlanStatus   `json:"planStatus"`
	ImplStatus   ImplStatus   `json:"implStatus"`
	ReviewStatus ReviewStatus `json:"reviewStatus"`
	Substep      string       `json:"substep,omitempty"`
	Regression   *Regression  `json:"regression,omitempty"`
}

func (*LeafItem) isItem() {}

// Workflow is the validated, flattened aggregate for one workflow file.
// Items reference each other by id; the slice order is the depth-first
// order of the source tree.
type Workflow struct {
	ID       string   `json:"id"`
	Source   Source   `json:"source"`
	Phase    Phase    `json:"phase"`
	Step     string   `json:"step"`
	Progress Progress `json:"progress"`
	Items    []Item   `json:"items"`
}

// Leaves returns the leaf items in order.
func (w *Workflow) Leaves() []*LeafItem {
	var leaves []*LeafItem
	for _, it := range w.Items {
		if leaf, ok := it.(*LeafItem); ok {
			leaves = append(leaves, leaf)
		}
	}
	return leaves
}

// FindItem returns the first item with the given id, or nil.
func (w *Workflow) FindItem(id string) Item {
	for _, it := range w.Items {
		if it.Common().ID == id {
			return it
		}
	}
	return nil
}

// Children returns the direct children of the epic with the given id.
func (w *Workflow) Children(epicID string) []Item {
	var out []Item
	for _, it := range w.Items {
		if it.Common().ParentID == epicID && epicID != "" {
			out = append(out, it)
		}
	}
	return out
}

// TopLevel returns the items that have no parent epic.
func (w *Workflow) TopLevel() []Item {
	var out []Item
	for _, it := range w.Items {
		if it.Common().ParentID == "" {
			out = append(out, it)
		}
	}
	return out
}
