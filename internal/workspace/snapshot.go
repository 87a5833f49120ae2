// Package workspace loads workflow files from a project directory, watches
// them for changes, and turns successive loads into notifications.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/sdd-engine/sdd/internal/workflow"
)

// Workspace layout under the project root.
const (
	ProjectDirName   = ".sdd"
	WorkflowsDirName = "workflows"
	WorkflowFileName = "workflow.yaml"
)

// maxConcurrentLoads bounds the number of workflow files read at once.
const maxConcurrentLoads = 8

// Snapshot is the loaded state of every workflow in a workspace at one
// point in time. Errored lists the directory names whose workflow file could
// not be read or parsed.
type Snapshot struct {
	Root       string               `json:"root"`
	HasProject bool                 `json:"hasProject"`
	Workflows  []*workflow.Workflow `json:"workflows"`
	Errored    []string             `json:"errored,omitempty"`

	// Failures maps an errored directory name to its load error.
	Failures map[string]error `json:"-"`
}

// Leaves returns every leaf across all workflows, in workflow order.
func (s *Snapshot) Leaves() []*workflow.LeafItem {
	var out []*workflow.LeafItem
	for _, wf := range s.Workflows {
		out = append(out, wf.Leaves()...)
	}
	return out
}

// Workflow returns the workflow with the given id, or nil.
func (s *Snapshot) Workflow(id string) *workflow.Workflow {
	for _, wf := range s.Workflows {
		if wf.ID == id {
			return wf
		}
	}
	return nil
}

// FindItem searches every workflow for an item id and returns the first
// match with its workflow.
func (s *Snapshot) FindItem(itemID string) (workflow.Item, *workflow.Workflow) {
	for _, wf := range s.Workflows {
		if it := wf.FindItem(itemID); it != nil {
			return it, wf
		}
	}
	return nil, nil
}

// ProjectDir returns the project directory under root.
func ProjectDir(root string) string {
	return filepath.Join(root, ProjectDirName)
}

// WorkflowsDir returns the directory holding workflow subdirectories.
func WorkflowsDir(root string) string {
	return filepath.Join(root, ProjectDirName, WorkflowsDirName)
}

// WorkflowFile returns the workflow file path for a workflow directory name.
func WorkflowFile(root, dir string) string {
	return filepath.Join(WorkflowsDir(root), dir, WorkflowFileName)
}

// Load reads and parses every workflow file under root. A missing project
// directory yields an empty snapshot with HasProject false. Failures of
// individual workflow directories are collected in Errored and never abort
// the load; only an unreadable workflows directory is an error.
func Load(ctx context.Context, root string) (*Snapshot, error) {
	snap := &Snapshot{Root: root}

	info, err := os.Stat(ProjectDir(root))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return snap, nil
		}
		return nil, fmt.Errorf("checking project directory: %w", err)
	}
	if !info.IsDir() {
		return snap, nil
	}
	snap.HasProject = true

	entries, err := os.ReadDir(WorkflowsDir(root))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return snap, nil
		}
		return nil, fmt.Errorf("reading workflows directory: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	results := make([]*workflow.Workflow, len(dirs))
	failures := make([]error, len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, dir := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], failures[i] = LoadFile(WorkflowFile(root, dir))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, dir := range dirs {
		if failures[i] != nil {
			if snap.Failures == nil {
				snap.Failures = make(map[string]error)
			}
			snap.Errored = append(snap.Errored, dir)
			snap.Failures[dir] = failures[i]
			continue
		}
		snap.Workflows = append(snap.Workflows, results[i])
	}
	return snap, nil
}

// LoadFile reads and parses a single workflow file.
func LoadFile(path string) (*workflow.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	wf, err := workflow.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return wf, nil
}
