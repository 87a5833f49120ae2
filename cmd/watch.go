package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sdd-engine/sdd/internal/config"
	"github.com/sdd-engine/sdd/internal/logging"
	"github.com/sdd-engine/sdd/internal/telemetry"
	"github.com/sdd-engine/sdd/internal/ui"
	"github.com/sdd-engine/sdd/internal/workspace"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch workflow files and report transitions",
		Long: `Watches .sdd/workflows/ and reloads after each burst of file changes.
Every detected transition is printed, recorded in the notification history
and, when telemetry_file is configured, appended to the telemetry stream.
Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
	cmd.Flags().Bool("no-history", false, "do not record notifications in the history database")
	return cmd
}

// session bundles what a long-running command needs around a Monitor.
type session struct {
	ID      string
	Logger  *logging.Logger
	Emitter *telemetry.Emitter
	Watcher *workspace.Watcher
	Monitor *workspace.Monitor
}

// openSession wires logger, telemetry, watcher and monitor for cfg. The
// caller must Close the session.
func openSession(cfg config.Config, quiet bool) (*session, error) {
	s := &session{ID: uuid.NewString()}

	logger, err := newLogger(cfg, quiet)
	if err != nil {
		return nil, err
	}
	s.Logger = logger.With("session", s.ID)

	if path := cfg.Path(cfg.TelemetryFile); path != "" {
		em, err := telemetry.NewEmitter(path)
		if err != nil {
			s.Close()
			return nil, err
		}
		em.SetSession(s.ID)
		s.Emitter = em
	}

	w, err := workspace.NewWatcher(cfg.Root, cfg.Debounce(), s.Logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		s.Close()
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	s.Watcher = w
	s.Monitor = workspace.NewMonitor(cfg.Root, s.Logger, s.Emitter)
	return s, nil
}

// Close stops the watcher and flushes telemetry and logs.
func (s *session) Close() {
	if s.Watcher != nil {
		s.Watcher.Stop()
	}
	if err := s.Emitter.Close(); err != nil {
		s.Logger.Warn("closing telemetry", "error", err)
	}
	_ = s.Logger.Close()
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printer := ui.NewWriter(cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(cfg, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	var recorder *historyRecorder
	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		recorder = newHistoryRecorder(cfg.Path(cfg.HistoryDB), sess.Logger)
		defer recorder.Close()
	}

	first := true
	sess.Monitor.OnUpdate(func(u workspace.Update) {
		if first {
			first = false
			printer.Summary(workspace.Summarize(u.Snapshot, nil))
			printer.Info(fmt.Sprintf("watching %s", workspace.WorkflowsDir(cfg.Root)))
			return
		}
		for _, n := range u.Notifications {
			printer.Notification(n)
		}
		if recorder != nil {
			recorder.Record(ctx, u)
		}
	})
	sess.Monitor.OnError(func(err error) {
		printer.Error(fmt.Sprintf("refresh failed: %v", err))
	})

	sess.Monitor.Run(ctx, sess.Watcher.Changes)
	return nil
}

// withTimeout bounds one-shot work started from an interactive command.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 30*time.Second)
}
