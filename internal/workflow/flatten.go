package workflow

import "slices"

// Flatten converts a nested item tree into the flat depth-first sequence a
// Workflow holds. Each epic is emitted immediately before its descendants and
// every item records its immediate enclosing epic as ParentID. The output
// shares no slices with the input.
func Flatten(items []ItemSpec, workflowID string) []Item {
	var out []Item
	flattenInto(&out, items, workflowID, "")
	return out
}

func flattenInto(out *[]Item, items []ItemSpec, workflowID, parentID string) {
	for _, spec := range items {
		base := ItemBase{
			ID:              spec.ID,
			Title:           spec.Title,
			Type:            spec.Type,
			WorkflowID:      workflowID,
			ParentID:        parentID,
			DependsOn:       slices.Clone(spec.DependsOn),
			ContextSections: slices.Clone(spec.ContextSections),
		}

		if spec.Leaf == nil {
			epic := &EpicItem{ItemBase: base, ChildIDs: make([]string, 0, len(spec.Children))}
			for _, c := range spec.Children {
				epic.ChildIDs = append(epic.ChildIDs, c.ID)
			}
			*out = append(*out, epic)
			flattenInto(out, spec.Children, workflowID, spec.ID)
			continue
		}

		*out = append(*out, &LeafItem{
			ItemBase:     base,
			ChangeID:     spec.Leaf.ChangeID,
			Location:     spec.Leaf.Location,
			SpecStatus:   spec.Leaf.SpecStatus,
			PlanStatus:   spec.Leaf.PlanStatus,
			ImplStatus:   spec.Leaf.ImplStatus,
			ReviewStatus: spec.Leaf.ReviewStatus,
			Substep:      spec.Leaf.Substep,
			Regression:   cloneRegression(spec.Leaf.Regression),
		})
	}
}

func cloneRegression(r *Regression) *Regression {
	if r == nil {
		return nil
	}
	c := *r
	c.PreservedWork = slices.Clone(r.PreservedWork)
	return &c
}
