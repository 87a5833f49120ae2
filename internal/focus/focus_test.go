package focus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdd-engine/sdd/internal/workspace"
)

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	s := NewStore(filepath.Join(t.TempDir(), "focus.toml"))

	ref, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ref != nil {
		t.Errorf("expected nil focus, got %+v", ref)
	}
}

func TestSaveLoadClear(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".sdd", "focus.toml")
	s := NewStore(path)

	want := workspace.FocusRef{WorkflowID: "wf-1", ItemID: "auth"}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading focus file: %v", err)
	}
	if !strings.Contains(string(data), "workflow_id") || !strings.Contains(string(data), "wf-1") {
		t.Errorf("expected workflow_id in TOML, got:\n%s", data)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be renamed away")
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || *got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err = s.Load()
	if err != nil {
		t.Fatalf("Load after Clear: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after Clear, got %+v", got)
	}
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestSaveRejectsIncompleteRef(t *testing.T) {
	t.Parallel()
	s := NewStore(filepath.Join(t.TempDir(), "focus.toml"))
	if err := s.Save(workspace.FocusRef{WorkflowID: "wf-1"}); err == nil {
		t.Fatal("expected error for missing item id")
	}
}

func TestLoadMalformed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "focus.toml")
	if err := os.WriteFile(path, []byte("focus = [not toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path).Load(); err == nil || !strings.Contains(err.Error(), "parsing focus file") {
		t.Errorf("expected parse error, got %v", err)
	}
}
