package workflow

import (
	"errors"
	"strings"
	"testing"
)

const validWorkflow = `
id: wf-auth
source: interactive
phase: spec
step: drafting specs
progress:
  total_items: 3
  specs_completed: "1"
  specs_pending: lots
  plans_completed: true
  implemented: 2.0
items:
  - id: auth
    title: Authentication
    type: epic
    context_sections: [Overview]
    children:
      - id: login
        title: Login form
        type: feature
        change_id: AUTH-1
        location: changes/login
        spec_status: in_progress
        plan_status: pending
        impl_status: pending
        review_status: pending
        substep: drafting
        depends_on: [signup, 7]
        context_sections: ["Flows", 3, "Errors"]
      - id: session
        title: Session store
        type: infrastructure
        change_id: AUTH-2
        location: changes/session
        spec_status: approved
        plan_status: approved
        impl_status: in_progress
        review_status: pending
        regression:
          from_phase: implement
          to_phase: spec
          reason: token format changed
          timestamp: 2025-01-02T03:04:05Z
          preserved_work:
            - path: changes/session/SPEC.md
              type: spec
              description: original draft
            - not a mapping
  - id: signup
    title: Signup
    type: bugfix
    change_id: AUTH-3
    location: changes/signup
    spec_status: ready_for_review
    plan_status: pending
    impl_status: pending
    review_status: pending
`

func TestParseValidWorkflow(t *testing.T) {
	t.Parallel()

	wf, err := Parse(validWorkflow)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if wf.ID != "wf-auth" {
		t.Errorf("ID = %q, want wf-auth", wf.ID)
	}
	if wf.Source != SourceInteractive {
		t.Errorf("Source = %q, want interactive", wf.Source)
	}
	if wf.Phase != PhaseSpec {
		t.Errorf("Phase = %q, want spec", wf.Phase)
	}
	if wf.Step != "drafting specs" {
		t.Errorf("Step = %q", wf.Step)
	}

	wantProgress := Progress{TotalItems: 3, SpecsCompleted: 1, PlansCompleted: 1, Implemented: 2}
	if wf.Progress != wantProgress {
		t.Errorf("Progress = %+v, want %+v", wf.Progress, wantProgress)
	}

	var ids []string
	for _, it := range wf.Items {
		ids = append(ids, it.Common().ID)
	}
	if got := strings.Join(ids, ","); got != "auth,login,session,signup" {
		t.Fatalf("item order = %s", got)
	}

	login, ok := wf.FindItem("login").(*LeafItem)
	if !ok {
		t.Fatalf("login is %T, want *LeafItem", wf.FindItem("login"))
	}
	if login.ParentID != "auth" || login.WorkflowID != "wf-auth" {
		t.Errorf("login parent/workflow = %q/%q", login.ParentID, login.WorkflowID)
	}
	if login.Substep != "drafting" {
		t.Errorf("Substep = %q", login.Substep)
	}
	if strings.Join(login.DependsOn, ",") != "signup" {
		t.Errorf("DependsOn = %v, want non-string entries dropped", login.DependsOn)
	}
	if strings.Join(login.ContextSections, ",") != "Flows,Errors" {
		t.Errorf("ContextSections = %v", login.ContextSections)
	}

	session := wf.FindItem("session").(*LeafItem)
	if session.Regression == nil {
		t.Fatal("expected regression on session")
	}
	if session.Regression.Reason != "token format changed" || session.Regression.ToPhase != "spec" {
		t.Errorf("Regression = %+v", session.Regression)
	}
	if session.Regression.Timestamp != "2025-01-02T03:04:05Z" {
		t.Errorf("Regression.Timestamp = %q", session.Regression.Timestamp)
	}
	if len(session.Regression.PreservedWork) != 1 {
		t.Errorf("expected 1 preserved work entry, got %d", len(session.Regression.PreservedWork))
	}

	epic := wf.FindItem("auth").(*EpicItem)
	if strings.Join(epic.ChildIDs, ",") != "login,session" {
		t.Errorf("ChildIDs = %v", epic.ChildIDs)
	}
	if epic.ParentID != "" {
		t.Errorf("top-level epic has parent %q", epic.ParentID)
	}

	signup := wf.FindItem("signup").(*LeafItem)
	if signup.ParentID != "" || signup.Type != TypeBugfix {
		t.Errorf("signup = %+v", signup)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	const head = "id: w\nphase: spec\nitems:\n"
	leaf := func(id, override string) string {
		fields := map[string]string{
			"title":         "T",
			"type":          "feature",
			"change_id":     "C-1",
			"location":      "loc",
			"spec_status":   "pending",
			"plan_status":   "pending",
			"impl_status":   "pending",
			"review_status": "pending",
		}
		order := []string{"title", "type", "change_id", "location", "spec_status", "plan_status", "impl_status", "review_status"}
		if override != "" {
			k, v, _ := strings.Cut(override, "=")
			if v == "<delete>" {
				delete(fields, k)
			} else {
				fields[k] = v
			}
		}
		var b strings.Builder
		b.WriteString("  - id: " + id + "\n")
		for _, k := range order {
			if v, ok := fields[k]; ok {
				b.WriteString("    " + k + ": " + v + "\n")
			}
		}
		return b.String()
	}

	tests := []struct {
		name    string
		input   string
		want    error
		itemID  string
		field   string
		message string
	}{
		{name: "empty", input: "", want: ErrEmptyInput, message: "empty workflow file"},
		{name: "whitespace only", input: "  \n\t\n", want: ErrEmptyInput},
		{name: "unterminated flow sequence", input: "foo: [unterminated", want: ErrMalformedSyntax, message: "invalid YAML"},
		{name: "multiple documents", input: "id: a\nphase: spec\n---\nid: b\nphase: spec\n", want: ErrMalformedSyntax},
		{name: "root sequence", input: "- a\n- b\n", want: ErrNotAMapping, message: "root is not a mapping"},
		{name: "root scalar", input: "just words", want: ErrNotAMapping},
		{name: "root null", input: "~", want: ErrNotAMapping},
		{name: "comment only", input: "# nothing here\n", want: ErrNotAMapping},
		{name: "missing id", input: "phase: spec\n", want: ErrMissingField, field: "id", message: "workflow missing id"},
		{name: "empty id", input: "id: ''\nphase: spec\n", want: ErrMissingField, field: "id"},
		{name: "numeric id", input: "id: 42\nphase: spec\n", want: ErrMissingField, field: "id"},
		{name: "invalid phase", input: "id: w\nphase: design\n", want: ErrMissingField, field: "phase", message: `invalid phase: "design"`},
		{name: "missing phase", input: "id: w\n", want: ErrMissingField, field: "phase"},
		{name: "item not a mapping", input: head + "  - just-a-string\n", want: ErrNotAMapping, message: "item is not a mapping"},
		{name: "item missing id", input: head + "  - title: T\n    type: feature\n", want: ErrMissingField, field: "id", message: "item missing id"},
		{name: "item missing title", input: head + leaf("a", "title=<delete>"), want: ErrMissingField, itemID: "a", field: "title", message: `item "a" missing title`},
		{name: "item invalid type", input: head + leaf("a", "type=story"), want: ErrInvalidEnum, itemID: "a", field: "type", message: `item "a" has invalid type: "story"`},
		{name: "item missing type", input: head + leaf("a", "type=<delete>"), want: ErrInvalidEnum, itemID: "a", field: "type"},
		{name: "missing change_id", input: head + leaf("a", "change_id=<delete>"), want: ErrMissingField, itemID: "a", field: "change_id", message: `item "a" missing change_id`},
		{name: "numeric change_id", input: head + leaf("a", "change_id=5"), want: ErrMissingField, itemID: "a", field: "change_id"},
		{name: "missing location", input: head + leaf("a", "location=<delete>"), want: ErrMissingField, itemID: "a", field: "location"},
		{name: "bogus spec status", input: head + leaf("a", "spec_status=bogus"), want: ErrInvalidEnum, itemID: "a", field: "spec_status", message: `item "a" has invalid spec_status: "bogus"`},
		{name: "bogus plan status", input: head + leaf("a", "plan_status=ready_for_review"), want: ErrInvalidEnum, itemID: "a", field: "plan_status"},
		{name: "bogus impl status", input: head + leaf("a", "impl_status=approved"), want: ErrInvalidEnum, itemID: "a", field: "impl_status"},
		{name: "bogus review status", input: head + leaf("a", "review_status=complete"), want: ErrInvalidEnum, itemID: "a", field: "review_status"},
		{name: "missing review status", input: head + leaf("a", "review_status=<delete>"), want: ErrInvalidEnum, itemID: "a", field: "review_status", message: `invalid review_status: ""`},
		{
			name: "nested child error",
			input: head + "  - id: e\n    title: E\n    type: epic\n    children:\n" +
				"      - id: inner\n        type: epic\n",
			want: ErrMissingField, itemID: "inner", field: "title",
		},
		{
			name:  "first invalid item wins",
			input: head + leaf("first", "spec_status=nope") + leaf("second", "title=<delete>"),
			want:  ErrInvalidEnum, itemID: "first", field: "spec_status",
		},
		{
			name:  "check order change_id before statuses",
			input: head + "  - id: a\n    title: T\n    type: feature\n    spec_status: nope\n",
			want:  ErrMissingField, itemID: "a", field: "change_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wf, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("expected error, got workflow %+v", wf)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.ItemID != tt.itemID {
				t.Errorf("ItemID = %q, want %q", pe.ItemID, tt.itemID)
			}
			if tt.field != "" && pe.Field != tt.field {
				t.Errorf("Field = %q, want %q", pe.Field, tt.field)
			}
			if tt.message != "" && !strings.Contains(err.Error(), tt.message) {
				t.Errorf("message %q does not contain %q", err.Error(), tt.message)
			}
		})
	}
}

func TestParseErrorKindMatchesOnlyItsSentinel(t *testing.T) {
	t.Parallel()

	_, err := Parse("id: w\nphase: spec\nitems:\n  - id: a\n    title: T\n    type: nope\n")
	sentinels := []error{ErrEmptyInput, ErrMalformedSyntax, ErrNotAMapping, ErrMissingField, ErrInvalidEnum}
	matched := 0
	for _, s := range sentinels {
		if errors.Is(err, s) {
			matched++
		}
	}
	if matched != 1 {
		t.Errorf("expected exactly one sentinel match, got %d for %v", matched, err)
	}
}

func TestParseMalformedKeepsDecoderCause(t *testing.T) {
	t.Parallel()

	_, err := Parse("foo: [unterminated")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Kind != KindMalformedSyntax || pe.Err == nil {
		t.Errorf("expected malformed error with cause, got %+v", pe)
	}
	if !strings.Contains(err.Error(), pe.Err.Error()) {
		t.Errorf("message %q should include decoder message %q", err.Error(), pe.Err.Error())
	}
}

func TestParseLenientFields(t *testing.T) {
	t.Parallel()

	input := `
id: lenient
source: robot
phase: review
step: 12
progress: not-a-map
items:
  - id: e
    title: Empty epic
    type: epic
    children: "not a list"
  - id: l
    title: Leaf
    type: refactor
    change_id: ""
    location: ""
    spec_status: needs_rereview
    plan_status: in_progress
    impl_status: complete
    review_status: changes_requested
    substep: 5
    depends_on: signup
    regression: [1, 2]
`
	wf, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if wf.Source != SourceExternal {
		t.Errorf("unknown source should be external, got %q", wf.Source)
	}
	if wf.Step != "" {
		t.Errorf("non-string step should be empty, got %q", wf.Step)
	}
	if wf.Progress != (Progress{}) {
		t.Errorf("non-mapping progress should be zero, got %+v", wf.Progress)
	}
	epic := wf.FindItem("e").(*EpicItem)
	if len(epic.ChildIDs) != 0 {
		t.Errorf("non-list children should be empty, got %v", epic.ChildIDs)
	}
	l := wf.FindItem("l").(*LeafItem)
	if l.Substep != "" || l.DependsOn != nil || l.Regression != nil {
		t.Errorf("wrong-shaped optionals should be absent, got %+v", l)
	}
	if l.ChangeID != "" || l.Location != "" {
		t.Errorf("empty strings are valid change_id/location, got %+v", l)
	}
}

func TestParseItemsNotAList(t *testing.T) {
	t.Parallel()

	wf, err := Parse("id: w\nphase: plan\nitems: {a: 1}\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(wf.Items) != 0 {
		t.Errorf("expected no items, got %d", len(wf.Items))
	}
}

func TestParseZeroItems(t *testing.T) {
	t.Parallel()

	wf, err := Parse("id: empty\nphase: spec\nitems: []\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(wf.Items) != 0 {
		t.Errorf("expected empty item sequence, got %d items", len(wf.Items))
	}
	if AllSpecsApproved(wf) || AllReviewsApproved(wf) {
		t.Error("aggregate predicates must be false with zero leaves")
	}
}

func TestParseNonStringKeys(t *testing.T) {
	t.Parallel()

	// An integer key forces yaml.v3 to produce map[interface{}]interface{}.
	wf, err := Parse("id: w\nphase: spec\n1: one\nitems: []\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if wf.ID != "w" {
		t.Errorf("ID = %q", wf.ID)
	}
}

func TestParseDocumentKeepsNesting(t *testing.T) {
	t.Parallel()

	doc, err := ParseDocument(validWorkflow)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(doc.Items) != 2 {
		t.Fatalf("expected 2 top-level items, got %d", len(doc.Items))
	}
	if doc.Items[0].Leaf != nil || len(doc.Items[0].Children) != 2 {
		t.Errorf("epic spec = %+v", doc.Items[0])
	}
	if doc.Items[1].Leaf == nil || doc.Items[1].Leaf.ChangeID != "AUTH-3" {
		t.Errorf("leaf spec = %+v", doc.Items[1])
	}
}
