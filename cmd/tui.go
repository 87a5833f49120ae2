package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdd-engine/sdd/internal/focus"
	"github.com/sdd-engine/sdd/internal/tui"
	"github.com/sdd-engine/sdd/internal/workspace"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive workflow browser",
		Long: `Launch the sdd TUI: a status bar with the workspace summary, the workflow
tree with expandable epics, and a detail panel showing the selected item's
lifecycle. The view refreshes whenever workflow files change. From the tree
you can focus a leaf and open its spec or plan in $EDITOR.`,
		Args: cobra.NoArgs,
		RunE: runTUI,
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if !isStderrTTY() {
		return fmt.Errorf("sdd tui requires a TTY (terminal)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess, err := openSession(cfg, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	recorder := newHistoryRecorder(cfg.Path(cfg.HistoryDB), sess.Logger)
	defer recorder.Close()

	program := tui.NewProgram(tui.Options{
		Root:       cfg.Root,
		Editor:     cfg.EditorCommand(),
		FocusStore: focus.NewStore(cfg.Path(cfg.FocusFile)),
		Refresh: func(ctx context.Context) error {
			ctx, cancel := withTimeout(ctx)
			defer cancel()
			_, err := sess.Monitor.Refresh(ctx)
			return err
		},
		Logger: sess.Logger,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	bridge := tui.NewMonitorBridge(program)
	sess.Monitor.OnUpdate(bridge.HandleUpdate)
	sess.Monitor.OnUpdate(func(u workspace.Update) { recorder.Record(ctx, u) })
	sess.Monitor.OnError(bridge.Error)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sess.Monitor.Run(ctx, sess.Watcher.Changes)
	}()
	// The monitor must stop before the recorder and session close.
	defer func() {
		cancel()
		<-done
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
