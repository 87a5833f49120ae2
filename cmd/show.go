package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdd-engine/sdd/internal/stepper"
	"github.com/sdd-engine/sdd/internal/ui"
	"github.com/sdd-engine/sdd/internal/workflow"
	"github.com/sdd-engine/sdd/internal/workspace"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show the lifecycle of one item",
		Long: `Prints the stepper view of an item: for a leaf its spec, plan, implement
and review steps with dependencies and artifacts, for an epic the progress
of its children.

  --workflow   Restrict the lookup to one workflow (default: first match)
  --open       Open the item's spec or plan in the editor
  --json       Write the show-item message as JSON to stdout`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
	cmd.Flags().String("workflow", "", "workflow id to search")
	cmd.Flags().String("open", "", "artifact to open: spec or plan")
	cmd.Flags().Bool("json", false, "output the show-item message as JSON")
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printer := ui.NewWriter(cmd.ErrOrStderr())

	snap, err := workspace.Load(cmd.Context(), cfg.Root)
	if err != nil {
		return err
	}

	ctrl := stepper.NewController(cfg.Root, editorOpener(cfg.EditorCommand()))
	ctrl.SetSnapshot(snap)

	wfID, _ := cmd.Flags().GetString("workflow")
	msg, err := ctrl.Show(wfID, args[0])
	if err != nil {
		if errors.Is(err, stepper.ErrItemNotFound) && wfID != "" {
			return fmt.Errorf("%w in workflow %s", err, wfID)
		}
		return err
	}

	if open, _ := cmd.Flags().GetString("open"); open != "" {
		return openArtifact(ctrl, msg.Item, open)
	}

	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(msg)
	}

	switch it := msg.Item.(type) {
	case *workflow.LeafItem:
		printer.LeafView(stepper.BuildLeaf(it, msg.AllItems))
	case *workflow.EpicItem:
		printer.EpicView(stepper.BuildEpic(it, msg.AllItems))
	}
	return nil
}

func openArtifact(ctrl *stepper.Controller, it workflow.Item, which string) error {
	leaf, ok := it.(*workflow.LeafItem)
	if !ok {
		return fmt.Errorf("%s is an epic and has no artifacts", it.Common().ID)
	}
	var path string
	switch strings.ToLower(which) {
	case "spec":
		path = workflow.SpecPath(leaf)
	case "plan":
		if !workflow.HasPlan(leaf) {
			return fmt.Errorf("%s has no plan yet", leaf.ID)
		}
		path = workflow.PlanPath(leaf)
	default:
		return fmt.Errorf("unknown artifact %q (want spec or plan)", which)
	}
	_, _, err := ctrl.Handle(stepper.OpenFile(path))
	return err
}

// editorOpener runs editor on a path attached to the current terminal.
func editorOpener(editor string) stepper.OpenerFunc {
	return func(path string) error {
		parts := strings.Fields(editor)
		if len(parts) == 0 {
			parts = []string{"vi"}
		}
		c := exec.Command(parts[0], append(parts[1:], path)...)
		c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
		return c.Run()
	}
}
