package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testDebounce = 20 * time.Millisecond

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case _, ok := <-ch:
		if !ok {
			t.Fatal("changes channel closed")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change signal")
	}
}

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := NewWatcher(root, testDebounce, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcherSignalsOnWorkflowWrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeWorkflow(t, root, "a", workflowYAML("a", "pending", "pending", "pending", "pending"))
	w := startWatcher(t, root)

	writeWorkflow(t, root, "a", workflowYAML("a", "in_progress", "pending", "pending", "pending"))
	waitSignal(t, w.Changes)
}

func TestWatcherCoalescesBursts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeWorkflow(t, root, "a", workflowYAML("a", "pending", "pending", "pending", "pending"))
	w := startWatcher(t, root)

	for i := 0; i < 5; i++ {
		writeWorkflow(t, root, "a", workflowYAML("a", "in_progress", "pending", "pending", "pending"))
	}
	waitSignal(t, w.Changes)

	select {
	case <-w.Changes:
		t.Error("expected a single coalesced signal")
	case <-time.After(10 * testDebounce):
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := startWatcher(t, root)

	if err := os.Mkdir(ProjectDir(root), 0o755); err != nil {
		t.Fatal(err)
	}
	waitSignal(t, w.Changes)

	if err := os.Mkdir(WorkflowsDir(root), 0o755); err != nil {
		t.Fatal(err)
	}
	waitSignal(t, w.Changes)

	if err := os.Mkdir(filepath.Join(WorkflowsDir(root), "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	waitSignal(t, w.Changes)

	writeWorkflow(t, root, "b", workflowYAML("b", "pending", "pending", "pending", "pending"))
	waitSignal(t, w.Changes)
}

func TestWatcherSignalsOnProjectRemoval(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeWorkflow(t, root, "a", workflowYAML("a", "pending", "pending", "pending", "pending"))
	w := startWatcher(t, root)

	if err := os.RemoveAll(ProjectDir(root)); err != nil {
		t.Fatal(err)
	}
	waitSignal(t, w.Changes)
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeWorkflow(t, root, "a", workflowYAML("a", "pending", "pending", "pending", "pending"))
	w := startWatcher(t, root)

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(WorkflowsDir(root), "a", "SPEC.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changes:
		t.Error("unexpected signal for unrelated files")
	case <-time.After(10 * testDebounce):
	}
}

func TestWatcherIsRelevant(t *testing.T) {
	t.Parallel()

	w := &Watcher{Root: "/proj"}
	tests := []struct {
		path string
		want bool
	}{
		{"/proj/.sdd", true},
		{"/proj/.sdd/workflows", true},
		{"/proj/.sdd/workflows/auth", true},
		{"/proj/.sdd/workflows/auth/workflow.yaml", true},
		{"/proj/.sdd/workflows/auth/SPEC.md", false},
		{"/proj/.sdd/focus.toml", false},
		{"/proj/src/main.go", false},
		{"/proj/.sdd/workflows/auth/nested/workflow.yaml", false},
	}
	for _, tt := range tests {
		if got := w.isRelevant(filepath.FromSlash(tt.path)); got != tt.want {
			t.Errorf("isRelevant(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
