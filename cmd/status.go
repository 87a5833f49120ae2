package cmd

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/sdd-engine/sdd/internal/focus"
	"github.com/sdd-engine/sdd/internal/ui"
	"github.com/sdd-engine/sdd/internal/workspace"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the workspace summary and workflow tree",
		Long: `Loads every workflow under .sdd/workflows/ and prints the one-line summary
followed by each workflow's items. Directories whose workflow file fails to
load are listed as errored.

  --json   Write the snapshot and summary as JSON to stdout`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
	cmd.Flags().Bool("json", false, "output status as JSON to stdout")
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printer := ui.NewWriter(cmd.ErrOrStderr())

	snap, err := workspace.Load(cmd.Context(), cfg.Root)
	if err != nil {
		return err
	}

	store := focus.NewStore(cfg.Path(cfg.FocusFile))
	ref, err := store.Load()
	if err != nil {
		printer.Info("ignoring focus: " + err.Error())
		ref = nil
	}
	summary := workspace.Summarize(snap, ref)
	if summary.FocusStale {
		if err := store.Clear(); err != nil {
			printer.Info("clearing stale focus: " + err.Error())
		}
	}

	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		return writeStatusJSON(cmd.OutOrStdout(), snap, summary)
	}

	printer.Summary(summary)
	printer.Tree(snap)
	return nil
}

// statusJSON is the --json output of the status command.
type statusJSON struct {
	Summary  workspace.Summary   `json:"summary"`
	Snapshot *workspace.Snapshot `json:"snapshot"`
	Failures map[string]string   `json:"failures,omitempty"`
}

func writeStatusJSON(w io.Writer, snap *workspace.Snapshot, summary workspace.Summary) error {
	out := statusJSON{Summary: summary, Snapshot: snap}
	for dir, err := range snap.Failures {
		if out.Failures == nil {
			out.Failures = make(map[string]string, len(snap.Failures))
		}
		out.Failures[dir] = err.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
