package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/sdd-engine/sdd/internal/workflow"
	"github.com/sdd-engine/sdd/internal/workspace"
)

const fixtureYAML = `
id: wf-auth
phase: spec
step: review
progress:
  total_items: 3
  specs_completed: 1
items:
  - id: auth
    title: Authentication
    type: epic
    children:
      - id: login
        title: Login form
        type: feature
        change_id: AUTH-1
        location: changes/login
        spec_status: approved
        plan_status: in_progress
        impl_status: pending
        review_status: pending
      - id: tokens
        title: Tokens
        type: epic
        children:
          - id: refresh
            title: Refresh tokens
            type: feature
            change_id: AUTH-3
            location: changes/refresh
            spec_status: ready_for_review
            plan_status: pending
            impl_status: pending
            review_status: pending
  - id: signup
    title: Signup
    type: feature
    change_id: AUTH-2
    location: changes/signup
    spec_status: in_progress
    plan_status: pending
    impl_status: pending
    review_status: pending
`

func fixtureSnapshot(t *testing.T) *workspace.Snapshot {
	t.Helper()
	wf, err := workflow.Parse(fixtureYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return &workspace.Snapshot{
		HasProject: true,
		Workflows:  []*workflow.Workflow{wf},
		Errored:    []string{"broken"},
		Failures:   map[string]error{"broken": errors.New("invalid YAML: boom")},
	}
}

func rowKeys(tv TreeView) []string {
	keys := make([]string, len(tv.Rows))
	for i, r := range tv.Rows {
		keys[i] = r.key()
	}
	return keys
}

func TestTreeViewRows(t *testing.T) {
	t.Parallel()

	tv := NewTreeView()
	tv.SetSnapshot(fixtureSnapshot(t))

	want := []string{
		"wf:wf-auth",
		"item:wf-auth/auth",
		"item:wf-auth/login",
		"item:wf-auth/tokens",
		"item:wf-auth/refresh",
		"item:wf-auth/signup",
		"err:broken",
	}
	got := rowKeys(tv)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	if tv.Rows[4].Depth != 3 {
		t.Errorf("nested leaf depth = %d, want 3", tv.Rows[4].Depth)
	}
}

func TestTreeViewToggleKeepsCursor(t *testing.T) {
	t.Parallel()

	snap := fixtureSnapshot(t)
	tv := NewTreeView()
	tv.SetSnapshot(snap)

	tv.MoveDown() // auth
	if !tv.Toggle() {
		t.Fatal("expected epic toggle to succeed")
	}
	tv.SetSnapshot(snap)
	if len(tv.Rows) != 4 {
		t.Fatalf("collapsed tree should have 4 rows, got %v", rowKeys(tv))
	}
	if r := tv.Selected(); r == nil || r.key() != "item:wf-auth/auth" {
		t.Errorf("cursor should stay on the epic, got %+v", r)
	}
	if !tv.Collapsed("item:wf-auth/auth") {
		t.Error("expected auth to be collapsed")
	}

	tv.MoveDown() // signup
	if tv.Toggle() {
		t.Error("toggling a leaf should be a no-op")
	}
}

func TestTreeViewCursorBounds(t *testing.T) {
	t.Parallel()

	tv := NewTreeView()
	if tv.Selected() != nil {
		t.Error("empty tree should have no selection")
	}
	tv.MoveUp()
	tv.MoveDown()
	if tv.Cursor != 0 {
		t.Errorf("cursor moved on empty tree: %d", tv.Cursor)
	}

	tv.SetSnapshot(fixtureSnapshot(t))
	for i := 0; i < 20; i++ {
		tv.MoveDown()
	}
	if tv.Cursor != len(tv.Rows)-1 {
		t.Errorf("cursor = %d, want last row %d", tv.Cursor, len(tv.Rows)-1)
	}
}

func TestTreeViewRender(t *testing.T) {
	t.Parallel()

	tv := NewTreeView()
	tv.Width = 120
	tv.SetSnapshot(fixtureSnapshot(t))

	out := tv.View(&workspace.FocusRef{WorkflowID: "wf-auth", ItemID: "signup"})
	for _, want := range []string{"wf-auth", "Authentication", "AUTH-1: Login form", "AUTH-3: Refresh tokens", "broken", "Error loading workflow", iconFocus} {
		if !strings.Contains(out, want) {
			t.Errorf("tree view missing %q:\n%s", want, out)
		}
	}

	empty := NewTreeView()
	if !strings.Contains(empty.View(nil), "No workflows") {
		t.Error("expected empty-state text")
	}
}
