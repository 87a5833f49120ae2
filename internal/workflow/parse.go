package workflow

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Document is a validated workflow file before flattening. Items keep their
// nesting; Flatten turns them into the flat Workflow form.
type Document struct {
	ID       string
	Source   Source
	Phase    Phase
	Step     string
	Progress Progress
	Items    []ItemSpec
}

// ItemSpec is a validated item as it appears in the file. Leaf is nil for
// epics; Children is always empty for leaves.
type ItemSpec struct {
	ID              string
	Title           string
	Type            ItemType
	DependsOn       []string
	ContextSections []string
	Children        []ItemSpec
	Leaf            *LeafSpec
}

// LeafSpec carries the lifecycle fields of a non-epic item.
type LeafSpec struct {
	ChangeID     string
	Location     string
	SpecStatus   SpecStatus
	PlanStatus   PlanStatus
	ImplStatus   ImplStatus
	ReviewStatus ReviewStatus
	Substep      string
	Regression   *Regression
}

// Parse validates the workflow text and flattens its items.
func Parse(text string) (*Workflow, error) {
	doc, err := ParseDocument(text)
	if err != nil {
		return nil, err
	}
	return doc.Workflow(), nil
}

// Workflow flattens the document into its Workflow form.
func (d *Document) Workflow() *Workflow {
	return &Workflow{
		ID:       d.ID,
		Source:   d.Source,
		Phase:    d.Phase,
		Step:     d.Step,
		Progress: d.Progress,
		Items:    Flatten(d.Items, d.ID),
	}
}

// ParseDocument decodes and validates workflow text. Items are validated
// depth-first in file order and the first failure is returned as a
// *ParseError.
func ParseDocument(text string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errEmptyInput()
	}

	root, err := decodeSingle(text)
	if err != nil {
		return nil, err
	}

	m, ok := asMapping(root)
	if !ok {
		return nil, errRootNotMapping()
	}

	id, ok := m["id"].(string)
	if !ok || id == "" {
		return nil, errWorkflowMissingID()
	}

	phase := Phase(stringOf(m["phase"]))
	if !phase.IsValid() {
		return nil, errWorkflowPhase(display(m["phase"]))
	}

	doc := &Document{
		ID:       id,
		Source:   SourceExternal,
		Phase:    phase,
		Step:     stringOf(m["step"]),
		Progress: parseProgress(m["progress"]),
	}
	if m["source"] == string(SourceInteractive) {
		doc.Source = SourceInteractive
	}

	for _, raw := range sequence(m["items"]) {
		item, err := parseItem(raw)
		if err != nil {
			return nil, err
		}
		doc.Items = append(doc.Items, item)
	}
	return doc, nil
}

// decodeSingle decodes exactly one YAML document. A comment-only stream
// decodes to nil; a second document is a syntax error.
func decodeSingle(text string) (any, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))

	var root any
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errMalformed(err)
	}

	var extra any
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return root, nil
	case err != nil:
		return nil, errMalformed(err)
	default:
		return nil, errMalformed(errors.New("expected a single document in the stream"))
	}
}

func parseItem(raw any) (ItemSpec, error) {
	m, ok := asMapping(raw)
	if !ok {
		return ItemSpec{}, errItemNotMapping()
	}

	id, _ := m["id"].(string)
	if id == "" {
		return ItemSpec{}, errItemMissing("", "id")
	}
	title, _ := m["title"].(string)
	if title == "" {
		return ItemSpec{}, errItemMissing(id, "title")
	}
	typ, _ := m["type"].(string)
	if !ItemType(typ).IsValid() {
		return ItemSpec{}, errItemInvalid(id, "type", display(m["type"]))
	}

	item := ItemSpec{
		ID:              id,
		Title:           title,
		Type:            ItemType(typ),
		DependsOn:       stringList(m["depends_on"]),
		ContextSections: stringList(m["context_sections"]),
	}

	if item.Type == TypeEpic {
		for _, rawChild := range sequence(m["children"]) {
			child, err := parseItem(rawChild)
			if err != nil {
				return ItemSpec{}, err
			}
			item.Children = append(item.Children, child)
		}
		return item, nil
	}

	leaf, err := parseLeaf(id, m)
	if err != nil {
		return ItemSpec{}, err
	}
	item.Leaf = leaf
	return item, nil
}

func parseLeaf(id string, m map[string]any) (*LeafSpec, error) {
	changeID, ok := m["change_id"].(string)
	if !ok {
		return nil, errItemMissing(id, "change_id")
	}
	location, ok := m["location"].(string)
	if !ok {
		return nil, errItemMissing(id, "location")
	}

	leaf := &LeafSpec{ChangeID: changeID, Location: location}

	spec, _ := m["spec_status"].(string)
	if leaf.SpecStatus = SpecStatus(spec); !leaf.SpecStatus.IsValid() {
		return nil, errItemInvalid(id, "spec_status", display(m["spec_status"]))
	}
	plan, _ := m["plan_status"].(string)
	if leaf.PlanStatus = PlanStatus(plan); !leaf.PlanStatus.IsValid() {
		return nil, errItemInvalid(id, "plan_status", display(m["plan_status"]))
	}
	impl, _ := m["impl_status"].(string)
	if leaf.ImplStatus = ImplStatus(impl); !leaf.ImplStatus.IsValid() {
		return nil, errItemInvalid(id, "impl_status", display(m["impl_status"]))
	}
	review, _ := m["review_status"].(string)
	if leaf.ReviewStatus = ReviewStatus(review); !leaf.ReviewStatus.IsValid() {
		return nil, errItemInvalid(id, "review_status", display(m["review_status"]))
	}

	leaf.Substep = stringOf(m["substep"])
	leaf.Regression = parseRegression(m["regression"])
	return leaf, nil
}

func parseProgress(raw any) Progress {
	m, ok := asMapping(raw)
	if !ok {
		return Progress{}
	}
	return Progress{
		TotalItems:     counter(m["total_items"]),
		SpecsCompleted: counter(m["specs_completed"]),
		SpecsPending:   counter(m["specs_pending"]),
		PlansCompleted: counter(m["plans_completed"]),
		PlansPending:   counter(m["plans_pending"]),
		Implemented:    counter(m["implemented"]),
		Reviewed:       counter(m["reviewed"]),
	}
}

// counter coerces a progress value to an int. Anything that is not a finite
// number in int range counts as 0; numeric strings are read in base 10.
func counter(v any) int {
	switch n := v.(type) {
	case float64:
		return truncate(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return truncate(f)
	case uint64:
		if n > math.MaxInt64 {
			return 0
		}
		return int(n)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0
	}
	return n
}

func truncate(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0
	}
	return int(f)
}

func parseRegression(raw any) *Regression {
	m, ok := asMapping(raw)
	if !ok {
		return nil
	}
	reg := &Regression{
		FromPhase: stringOf(m["from_phase"]),
		ToPhase:   stringOf(m["to_phase"]),
		Reason:    stringOf(m["reason"]),
		Timestamp: stringOf(m["timestamp"]),
	}
	for _, rawWork := range sequence(m["preserved_work"]) {
		w, ok := asMapping(rawWork)
		if !ok {
			continue
		}
		reg.PreservedWork = append(reg.PreservedWork, PreservedWork{
			Path:        stringOf(w["path"]),
			Type:        stringOf(w["type"]),
			Description: stringOf(w["description"]),
		})
	}
	return reg
}

// asMapping normalizes the two map shapes yaml.v3 produces for interface
// targets into map[string]any.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// sequence returns v as a list, or nil when v is not a YAML sequence.
func sequence(v any) []any {
	s, _ := v.([]any)
	return s
}

// stringList keeps only the string entries of a sequence.
func stringList(v any) []string {
	var out []string
	for _, e := range sequence(v) {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

// display renders a raw value for error messages. Absent values render empty.
func display(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
