package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sdd-engine/sdd/internal/history"
	"github.com/sdd-engine/sdd/internal/stepper"
	"github.com/sdd-engine/sdd/internal/workflow"
	"github.com/sdd-engine/sdd/internal/workspace"
)

const treeFixture = `
id: wf-auth
phase: implement
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
        plan_status: approved
        impl_status: complete
        review_status: approved
      - id: session
        title: Session store
        type: feature
        change_id: AUTH-2
        location: changes/session
        spec_status: ready_for_review
        plan_status: pending
        impl_status: pending
        review_status: pending
        depends_on: [login]
`

func parseFixture(t *testing.T) *workflow.Workflow {
	t.Helper()
	wf, err := workflow.Parse(treeFixture)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return wf
}

func assertContains(t *testing.T, output string, checks ...string) {
	t.Helper()
	for _, c := range checks {
		if !strings.Contains(output, c) {
			t.Errorf("expected output to contain %q, got:\n%s", c, output)
		}
	}
}

func TestTree(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWriter(&buf)
	p.Tree(&workspace.Snapshot{
		HasProject: true,
		Workflows:  []*workflow.Workflow{parseFixture(t)},
		Errored:    []string{"broken"},
		Failures:   map[string]error{"broken": errors.New("invalid YAML: boom")},
	})

	out := buf.String()
	assertContains(t, out,
		"wf-auth",
		"implement phase",
		"Authentication",
		"1/2 complete",
		"AUTH-1: Login form",
		"AUTH-2: Session store",
		"broken",
		"Error loading workflow",
		"invalid YAML: boom",
	)
	if strings.Index(out, "Authentication") > strings.Index(out, "AUTH-1") {
		t.Errorf("epic should be printed before its children:\n%s", out)
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWriter(&buf).Summary(workspace.Summary{
		State:   workspace.SummaryAttention,
		Text:    "SDD: 1 spec ready for review",
		Tooltip: "AUTH-2: Session store",
	})
	assertContains(t, buf.String(), "SDD: 1 spec ready for review", "  AUTH-2: Session store")
}

func TestValidateResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWriter(&buf)
	p.ValidateResult("a/workflow.yaml", parseFixture(t), nil)
	p.ValidateResult("b/workflow.yaml", nil, errors.New("workflow missing id"))

	assertContains(t, buf.String(),
		"✓ a/workflow.yaml",
		`workflow "wf-auth", 3 item(s), 2 leaf item(s)`,
		"✗ b/workflow.yaml",
		"workflow missing id",
	)
}

func TestNotification(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWriter(&buf)
	p.Notification(workflow.Notification{
		Kind:         workflow.KindSpecReadyForReview,
		WorkflowID:   "wf-auth",
		ItemTitle:    "Session store",
		ItemLocation: "changes/session",
	})
	p.Notification(workflow.Notification{Kind: workflow.KindWorkflowComplete, WorkflowID: "wf-auth"})

	assertContains(t, buf.String(),
		`Spec for "Session store" is ready for review`,
		"(changes/session/SPEC.md)",
		"Workflow wf-auth complete!",
	)
}

func TestLeafAndEpicView(t *testing.T) {
	t.Parallel()

	wf := parseFixture(t)
	session := wf.FindItem("session").(*workflow.LeafItem)

	var buf bytes.Buffer
	p := NewWriter(&buf)
	p.LeafView(stepper.BuildLeaf(session, wf.Items))
	assertContains(t, buf.String(),
		"AUTH-2: Session store",
		"Spec review",
		"! Spec",
		"Spec is ready for your review",
		"depends on:",
		"AUTH-1: Login form",
		"changes/session/SPEC.md",
	)
	if strings.Contains(buf.String(), "PLAN.md") {
		t.Errorf("plan artifact should not be listed while plan is pending:\n%s", buf.String())
	}

	buf.Reset()
	p.EpicView(stepper.BuildEpic(wf.FindItem("auth").(*workflow.EpicItem), wf.Items))
	assertContains(t, buf.String(), "Authentication", "Spec", "1/2", "Review", "AUTH-2: Session store")

	buf.Reset()
	p.EpicView(stepper.EpicView{Epic: &workflow.EpicItem{ItemBase: workflow.ItemBase{Title: "Empty"}}})
	assertContains(t, buf.String(), "Empty", "No items")
}

func TestHistory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWriter(&buf)
	p.History(nil)
	assertContains(t, buf.String(), "no notifications recorded")

	buf.Reset()
	p.History([]history.Entry{{
		ID:           1,
		Notification: workflow.Notification{Kind: workflow.KindChangesRequested, WorkflowID: "wf-auth", ItemTitle: "Login form"},
		Message:      `Changes requested on "Login form"`,
		RecordedAt:   time.Now().Add(-3 * time.Minute),
	}})
	assertContains(t, buf.String(), "wf-auth", `Changes requested on "Login form"`, "3 minutes ago")
}

func TestFocusChanged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWriter(&buf)
	p.FocusChanged(&workspace.FocusRef{WorkflowID: "wf-auth", ItemID: "login"})
	p.FocusChanged(nil)
	assertContains(t, buf.String(), "focused", "wf-auth/login", "focus cleared")
}
