package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewEmitter_CreatesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter(%q): %v", path, err)
	}
	defer em.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist at %q: %v", path, err)
	}
}

func TestNewEmitter_ErrorOnBadPath(t *testing.T) {
	t.Parallel()
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewEmitter(filepath.Join(blocker, "events.jsonl"))
	if err == nil {
		t.Fatal("expected error for bad path, got nil")
	}
	if !strings.Contains(err.Error(), "telemetry: open") {
		t.Errorf("expected wrapped error, got: %v", err)
	}
}

func TestEmit_RoundTripsThroughReadEvents(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}

	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: ts, Kind: KindRefresh, Data: RefreshData{Workflows: 2, Errored: 1}},
		{Timestamp: ts.Add(time.Second), Kind: KindTransition, WorkflowID: "wf-1", Data: map[string]string{"type": "workflow_complete"}},
		{Timestamp: ts.Add(2 * time.Second), Kind: KindParseError, Data: map[string]string{"dir": "broken"}},
	}
	for _, evt := range events {
		if err := em.Emit(evt); err != nil {
			t.Fatalf("Emit: %v", err)
		}
	}
	if err := em.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(got))
	}
	for i := range events {
		if got[i].Kind != events[i].Kind {
			t.Errorf("event %d: kind = %q, want %q", i, got[i].Kind, events[i].Kind)
		}
		if !got[i].Timestamp.Equal(events[i].Timestamp) {
			t.Errorf("event %d: ts = %v, want %v", i, got[i].Timestamp, events[i].Timestamp)
		}
	}
	if got[1].WorkflowID != "wf-1" {
		t.Errorf("expected workflow wf-1, got %q", got[1].WorkflowID)
	}
	data, ok := got[0].Data.(map[string]any)
	if !ok || data["workflows"] != float64(2) {
		t.Errorf("expected refresh data with workflows=2, got %#v", got[0].Data)
	}
}

func TestEmit_FillsTimestamp(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	if err := em.Emit(Event{Kind: KindRefresh}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	em.Close()

	got, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(got) != 1 || got[0].Timestamp.IsZero() {
		t.Fatalf("expected one event with timestamp, got %+v", got)
	}
}

func TestEmit_TagsSession(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	em.Emit(Event{Kind: KindRefresh})
	em.SetSession("watch-1")
	em.Emit(Event{Kind: KindRefresh})
	em.Emit(Event{Kind: KindTransition, Session: "explicit"})
	em.Close()

	got, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	var sessions []string
	for _, evt := range got {
		sessions = append(sessions, evt.Session)
	}
	want := []string{"", "watch-1", "explicit"}
	if diff := cmp.Diff(want, sessions); diff != "" {
		t.Errorf("sessions mismatch (-want +got):\n%s", diff)
	}
}

func TestNilEmitter_IsNoop(t *testing.T) {
	t.Parallel()
	var em *Emitter
	if err := em.Emit(Event{Kind: KindRefresh}); err != nil {
		t.Errorf("Emit on nil emitter: %v", err)
	}
	if err := em.Close(); err != nil {
		t.Errorf("Close on nil emitter: %v", err)
	}
}

func TestEmit_ConcurrentWriters(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = em.Emit(Event{Kind: KindTransition})
		}()
	}
	wg.Wait()
	em.Close()

	got, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(got) != n {
		t.Errorf("expected %d events, got %d", n, len(got))
	}
}
