package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/sdd-engine/sdd/internal/telemetry"
)

func newTelemetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "View JSONL telemetry events",
		Long: `Reads and formats the telemetry file written by watch and tui sessions.

Without --file, the configured telemetry_file is used.
With --session, only events from that session are shown.
With --follow (-f), watches the file for new events (like tail -f).`,
		Args: cobra.NoArgs,
		RunE: runTelemetry,
	}
	cmd.Flags().String("file", "", "telemetry file to read (default: telemetry_file)")
	cmd.Flags().String("session", "", "only show events from this session id")
	cmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	return cmd
}

func runTelemetry(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Path(cfg.TelemetryFile)
	}
	if path == "" {
		return fmt.Errorf("telemetry: no file given and telemetry_file is not configured")
	}
	session, _ := cmd.Flags().GetString("session")
	follow, _ := cmd.Flags().GetBool("follow")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(f)
	if err := printLines(out, reader, session); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}

	if !follow {
		return nil
	}
	return tailFollow(cmd, reader, path, session)
}

// printLines prints every complete line currently available in r.
func printLines(w io.Writer, r *bufio.Reader, session string) error {
	for {
		line, err := r.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			printEvent(w, line, session)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// tailFollow watches the file for new data using fsnotify and prints new
// events until the command context is cancelled.
func tailFollow(cmd *cobra.Command, r *bufio.Reader, path, session string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			if err := printLines(cmd.OutOrStdout(), r, session); err != nil {
				return fmt.Errorf("telemetry: read %s: %w", path, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("telemetry: watch %s: %w", path, err)
		}
	}
}

// printEvent decodes a JSONL line and prints a human-readable representation.
// Events from other sessions are skipped when session is set.
func printEvent(w io.Writer, line, session string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}
	if session != "" && evt.Session != session {
		return
	}

	parts := []string{fmt.Sprintf("[%s]", evt.Timestamp.Local().Format(time.TimeOnly)), evt.Kind}
	if evt.WorkflowID != "" {
		parts = append(parts, fmt.Sprintf("workflow=%s", evt.WorkflowID))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
