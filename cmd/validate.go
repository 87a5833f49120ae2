package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sdd-engine/sdd/internal/ui"
	"github.com/sdd-engine/sdd/internal/workspace"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path...]",
		Short: "Check that workflow files parse",
		Long: `Parses each given workflow file and reports the first problem found in it.
Without arguments every workflow under the project root is checked. Exits
non-zero if any file fails.`,
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printer := ui.NewWriter(cmd.ErrOrStderr())

	paths := args
	if len(paths) == 0 {
		paths, err = workflowFiles(cfg.Root)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			printer.Info("no workflows found under " + workspace.WorkflowsDir(cfg.Root))
			return nil
		}
	}

	failed := 0
	for _, path := range paths {
		wf, err := workspace.LoadFile(path)
		display := path
		if len(args) == 0 {
			display = relPath(cfg.Root, path)
		}
		printer.ValidateResult(display, wf, err)
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		printer.Error(fmt.Sprintf("%d of %d workflow file(s) invalid", failed, len(paths)))
		return errSilent
	}
	return nil
}

// workflowFiles lists the workflow file of every directory under the
// workflows directory, including directories whose file is missing so
// that validate reports them.
func workflowFiles(root string) ([]string, error) {
	entries, err := os.ReadDir(workspace.WorkflowsDir(root))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading workflows directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			paths = append(paths, workspace.WorkflowFile(root, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// relPath shortens path relative to root for display.
func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
