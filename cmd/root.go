package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sdd-engine/sdd/internal/config"
	"github.com/sdd-engine/sdd/internal/logging"
	"github.com/sdd-engine/sdd/internal/ui"
	"github.com/sdd-engine/sdd/internal/workspace"
)

// errSilent marks a failure that has already been reported to the user.
var errSilent = errors.New("command failed")

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			ui.New().Error(err.Error())
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sdd",
		Short: "Track spec-driven development workflows",
		Long: `sdd reads the workflow files under .sdd/workflows/ and reports where every
change stands in its spec, plan, implement and review lifecycle. Without a
subcommand it launches the TUI when a .sdd/ directory exists.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
		RunE:              runRootDefault,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default .sdd.yaml)")
	pf.String("root", "", "project root containing .sdd/ (default: current directory)")
	pf.Int("debounce-ms", 0, "quiet period before a file change triggers a refresh")
	pf.String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	pf.String("log-file", "", "append JSON logs to this file instead of stderr")

	for key, flag := range map[string]string{
		"root":        "root",
		"debounce_ms": "debounce-ms",
		"log_level":   "log-level",
		"log_file":    "log-file",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newStatusCmd(),
		newValidateCmd(),
		newShowCmd(),
		newWatchCmd(),
		newTUICmd(),
		newFocusCmd(),
		newHistoryCmd(),
		newTelemetryCmd(),
	)
	return root
}

func initConfig(cmd *cobra.Command, _ []string) error {
	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".sdd")
		viper.SetConfigType("yaml")
		if root, _ := cmd.Flags().GetString("root"); root != "" {
			viper.AddConfigPath(root)
		}
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("SDD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// runRootDefault launches the TUI when .sdd/ exists under the root and
// falls back to help otherwise.
func runRootDefault(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return cmd.Help()
	}
	if info, err := os.Stat(workspace.ProjectDir(cfg.Root)); err != nil || !info.IsDir() {
		return cmd.Help()
	}
	return runTUI(cmd, nil)
}

// loadConfig loads the merged configuration.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger opens the configured logger. Interactive commands that own the
// terminal pass quiet so that, without a log file, nothing is written to
// stderr.
func newLogger(cfg config.Config, quiet bool) (*logging.Logger, error) {
	path := cfg.Path(cfg.LogFile)
	if path == "" && quiet {
		return logging.Nop(), nil
	}
	return logging.New(path, cfg.LogLevel)
}

func isStderrTTY() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
