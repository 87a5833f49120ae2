package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdd-engine/sdd/internal/history"
	"github.com/sdd-engine/sdd/internal/logging"
	"github.com/sdd-engine/sdd/internal/ui"
	"github.com/sdd-engine/sdd/internal/workflow"
	"github.com/sdd-engine/sdd/internal/workspace"
)

var notificationKinds = map[workflow.NotificationKind]bool{
	workflow.KindSpecReadyForReview:     true,
	workflow.KindAllSpecsApproved:       true,
	workflow.KindImplementationComplete: true,
	workflow.KindChangesRequested:       true,
	workflow.KindWorkflowComplete:       true,
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded notifications",
		Long: `Lists the notifications recorded by watch and tui sessions, newest first.

  --workflow   Only show notifications for this workflow
  --kind       Only show one notification type, e.g. changes_requested
  --limit      Maximum number of entries (0 for all)`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
	cmd.Flags().String("workflow", "", "filter by workflow id")
	cmd.Flags().String("kind", "", "filter by notification type")
	cmd.Flags().Int("limit", 20, "maximum entries to show")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var f history.Filter
	f.WorkflowID, _ = cmd.Flags().GetString("workflow")
	f.Limit, _ = cmd.Flags().GetInt("limit")
	if kind, _ := cmd.Flags().GetString("kind"); kind != "" {
		f.Kind = workflow.NotificationKind(kind)
		if !notificationKinds[f.Kind] {
			return fmt.Errorf("unknown notification type %q", kind)
		}
	}

	path := cfg.Path(cfg.HistoryDB)
	printer := ui.NewWriter(cmd.OutOrStdout())
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		printer.History(nil)
		return nil
	}

	store, err := history.Open(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), f)
	if err != nil {
		return err
	}
	printer.History(entries)
	return nil
}

// historyRecorder records notifications from a monitor. The store is opened
// on the first update that carries notifications, which only happens inside
// a project, so a session started elsewhere never creates .sdd/.
type historyRecorder struct {
	path   string
	logger *logging.Logger

	mu     sync.Mutex
	store  *history.Store
	failed bool
}

func newHistoryRecorder(path string, logger *logging.Logger) *historyRecorder {
	return &historyRecorder{path: path, logger: logger}
}

// Record stores u's notifications. Errors are logged; a store that fails to
// open is not retried.
func (r *historyRecorder) Record(ctx context.Context, u workspace.Update) {
	if len(u.Notifications) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failed {
		return
	}
	if r.store == nil {
		store, err := history.Open(ctx, r.path)
		if err != nil {
			r.failed = true
			r.logger.Warn("history unavailable", "error", err)
			return
		}
		r.store = store
	}
	if err := r.store.Record(ctx, u.Notifications, time.Now()); err != nil {
		r.logger.Warn("recording history", "error", err)
	}
}

// Close closes the store if it was opened.
func (r *historyRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	return err
}
