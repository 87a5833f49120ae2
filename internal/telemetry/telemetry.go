// Package telemetry provides a JSONL event stream recording workspace
// refreshes, rejected workflow files, and detected transitions, so that a
// watch session can be audited after the fact.
package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event kinds identify the type of telemetry event.
const (
	KindRefresh    = "refresh"
	KindParseError = "parse_error"
	KindTransition = "transition"
)

// Event represents a single telemetry record.
type Event struct {
	Timestamp  time.Time `json:"ts"`
	Kind       string    `json:"kind"`
	Session    string    `json:"session,omitempty"`
	WorkflowID string    `json:"workflow,omitempty"`
	Data       any       `json:"data,omitempty"`
}

// RefreshData is the payload of a KindRefresh event.
type RefreshData struct {
	Workflows     int   `json:"workflows"`
	Errored       int   `json:"errored"`
	Notifications int   `json:"notifications"`
	DurationMS    int64 `json:"duration_ms"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file    *os.File
	enc     *json.Encoder
	session string
	mu      sync.Mutex
}

// NewEmitter creates a new Emitter that writes JSONL events to the file at
// path. The file is created if it does not exist, or appended to if it does.
func NewEmitter(path string) (*Emitter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// SetSession tags every subsequent event that has no session of its own.
func (e *Emitter) SetSession(id string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.session = id
	e.mu.Unlock()
}

// Emit writes a single event to the JSONL file. A zero Timestamp is filled
// with the current time. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if evt.Session == "" {
		evt.Session = e.session
	}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Close closes the underlying file. Calling Close on a nil Emitter is a
// no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}

// ReadEvents decodes every event in a JSONL telemetry file. Data payloads
// decode as generic JSON values.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var evt Event
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			return nil, fmt.Errorf("telemetry: line %d: %w", line, err)
		}
		events = append(events, evt)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("telemetry: read %s: %w", path, err)
	}
	return events, nil
}
