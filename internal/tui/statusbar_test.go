package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sdd-engine/sdd/internal/workspace"
)

func TestStatusBarView(t *testing.T) {
	t.Parallel()

	sb := StatusBar{
		Summary:     workspace.Summary{State: workspace.SummaryAttention, Text: "SDD: 2 specs ready for review"},
		Errored:     1,
		Workflows:   3,
		RefreshedAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Width:       100,
	}
	out := sb.View()
	for _, want := range []string{"SDD: 2 specs ready for review", "1 errored", "3 workflow(s)", "15:04:05"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar missing %q: %q", want, out)
		}
	}
	if strings.Contains(out, "\n") {
		t.Errorf("status bar should render on one line: %q", out)
	}
}

func TestStatusBarCompact(t *testing.T) {
	t.Parallel()

	sb := StatusBar{
		Summary:   workspace.Summary{Text: "SDD: 12/20 specced, 4/20 planned with a long tail"},
		Workflows: 3,
		Width:     CompactWidth - 10,
	}
	out := sb.View()
	if strings.Contains(out, "workflow(s)") {
		t.Errorf("compact bar should drop right segments: %q", out)
	}
	if w := lipgloss.Width(out); w > sb.Width {
		t.Errorf("status bar width %d exceeds %d", w, sb.Width)
	}
}

func TestFooterBindings(t *testing.T) {
	t.Parallel()

	km := DefaultKeyMap()
	snap := fixtureSnapshot(t)
	tv := NewTreeView()
	tv.SetSnapshot(snap)

	helpKeys := func(row *treeRow) string {
		var keys []string
		for _, b := range footerBindings(km, row) {
			keys = append(keys, b.Help().Key)
		}
		return strings.Join(keys, " ")
	}

	if got := helpKeys(nil); got != "↑/k ↓/j F r q" {
		t.Errorf("no-selection bindings = %q", got)
	}

	epic := &tv.Rows[1]
	if got := helpKeys(epic); !strings.Contains(got, "enter") {
		t.Errorf("epic bindings should include toggle: %q", got)
	}

	login := &tv.Rows[2]
	if got := helpKeys(login); !strings.Contains(got, " p ") || !strings.Contains(got, " f ") {
		t.Errorf("leaf with plan should offer plan and focus: %q", got)
	}

	signup := &tv.Rows[5]
	if got := helpKeys(signup); strings.Contains(got, " p ") {
		t.Errorf("leaf without plan should not offer plan: %q", got)
	}

	f := Footer{Width: 120, Bindings: footerBindings(km, login)}
	if !strings.Contains(f.View(), "spec") {
		t.Errorf("footer should show descriptions at full width: %q", f.View())
	}
}
