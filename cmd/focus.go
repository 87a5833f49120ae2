package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdd-engine/sdd/internal/focus"
	"github.com/sdd-engine/sdd/internal/ui"
	"github.com/sdd-engine/sdd/internal/workflow"
	"github.com/sdd-engine/sdd/internal/workspace"
)

func newFocusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Show, set or clear the focused leaf",
		Long: `The focused leaf drives the status summary when nothing needs attention.
Without a subcommand the current focus is printed.`,
		Args: cobra.NoArgs,
		RunE: runFocusShow,
	}

	setCmd := &cobra.Command{
		Use:   "set <workflow-id> <item-id>",
		Short: "Focus a leaf item",
		Args:  cobra.ExactArgs(2),
		RunE:  runFocusSet,
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the focus",
		Args:  cobra.NoArgs,
		RunE:  runFocusClear,
	}
	cmd.AddCommand(setCmd, clearCmd)
	return cmd
}

func runFocusShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ref, err := focus.NewStore(cfg.Path(cfg.FocusFile)).Load()
	if err != nil {
		return err
	}
	if ref == nil {
		ui.NewWriter(cmd.ErrOrStderr()).Info("no focus set")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ref.WorkflowID, ref.ItemID)
	return nil
}

func runFocusSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	snap, err := workspace.Load(cmd.Context(), cfg.Root)
	if err != nil {
		return err
	}
	ref := workspace.FocusRef{WorkflowID: args[0], ItemID: args[1]}
	if ref.Resolve(snap) == nil {
		if wf := snap.Workflow(ref.WorkflowID); wf != nil {
			if _, ok := wf.FindItem(ref.ItemID).(*workflow.EpicItem); ok {
				return fmt.Errorf("%s is an epic; only leaf items can be focused", ref.ItemID)
			}
		}
		return fmt.Errorf("no leaf %s in workflow %s", ref.ItemID, ref.WorkflowID)
	}

	if err := focus.NewStore(cfg.Path(cfg.FocusFile)).Save(ref); err != nil {
		return err
	}
	ui.NewWriter(cmd.ErrOrStderr()).FocusChanged(&ref)
	return nil
}

func runFocusClear(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := focus.NewStore(cfg.Path(cfg.FocusFile)).Clear(); err != nil {
		return err
	}
	ui.NewWriter(cmd.ErrOrStderr()).FocusChanged(nil)
	return nil
}
