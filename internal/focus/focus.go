// Package focus persists the workflow item a user has chosen to follow.
package focus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/sdd-engine/sdd/internal/workspace"
)

const stateVersion = 1

// state is the on-disk TOML layout.
type state struct {
	Version   int                 `toml:"version"`
	UpdatedAt time.Time           `toml:"updated_at"`
	Focus     *workspace.FocusRef `toml:"focus"`
}

// Store reads and writes the focus file at Path.
type Store struct {
	Path string
}

// NewStore returns a Store for the given file path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load returns the stored focus. A missing file, or a file without a focus
// table, yields nil with no error.
func (s *Store) Load() (*workspace.FocusRef, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading focus file: %w", err)
	}

	var st state
	if err := toml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing focus file: %w", err)
	}
	if st.Focus == nil || st.Focus.WorkflowID == "" || st.Focus.ItemID == "" {
		return nil, nil
	}
	return st.Focus, nil
}

// Save writes the focus atomically (write temp + rename).
func (s *Store) Save(ref workspace.FocusRef) error {
	if ref.WorkflowID == "" || ref.ItemID == "" {
		return fmt.Errorf("focus requires both workflow and item id")
	}

	data, err := toml.Marshal(state{
		Version:   stateVersion,
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
		Focus:     &ref,
	})
	if err != nil {
		return fmt.Errorf("marshaling focus: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("creating focus directory: %w", err)
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp focus file: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming focus file: %w", err)
	}
	return nil
}

// Clear removes the stored focus. Clearing an absent focus is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing focus file: %w", err)
	}
	return nil
}
