// Package cli implements the timebar command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/timebar/internal/config"
	"github.com/Dicklesworthstone/timebar/internal/output"
	"github.com/Dicklesworthstone/timebar/internal/timew"
)

var (
	cfgFile    string
	cfg        *config.Config
	noColor    bool
	verbose    bool
	formatFlag string

	// Build information - set via ldflags
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
	BuiltBy = "unknown"
)

// Seams for tests.
var (
	newRunner = func(c *config.Config) timew.Runner {
		return timew.NewClient(c.Timew.Binary, c.Timew.Timeout())
	}
	now = time.Now
)

// Commands that work without a valid config file.
var skipConfig = map[string]bool{
	"path":    true,
	"init":    true,
	"version": true,
	"help":    true,
}

func newRootCmd() *cobra.Command {
	var (
		toggle bool
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "timebar",
		Short: "Timewarrior status for Waybar",
		Long: `timebar prints the current timewarrior task as a one-line status for Waybar
and toggles tracking of the last task.

Waybar module:
  "custom/timew": {
      "exec": "timebar --watch",
      "return-type": "json",
      "on-click": "timebar --toggle"
  }`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if toggle {
				if watch {
					return errors.New("--toggle and --watch cannot be combined")
				}
				return runToggle(cmd)
			}
			return runStatus(cmd, watch)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: "+config.DefaultPath()+")")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors in text output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug information to stderr")
	cmd.PersistentFlags().StringVar(&formatFlag, "format", "", "status format: json or text (default from config)")

	cmd.Flags().BoolVarP(&toggle, "toggle", "t", false, "stop the running task or resume the last one")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and print a line whenever the status changes")

	cmd.AddCommand(
		newStatusCmd(),
		newToggleCmd(),
		newSummaryCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

// setup loads the config and installs the logger for every command.
func setup(cmd *cobra.Command) error {
	if skipConfig[cmd.Name()] {
		cfg = config.Default()
		setupLogging(cmd.ErrOrStderr(), cfg.Log.Level)
		return nil
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if errs := config.Validate(loaded); len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	cfg = loaded
	setupLogging(cmd.ErrOrStderr(), cfg.Log.Level)
	slog.Debug("config loaded", "path", configPath(), "binary", cfg.Timew.Binary, "data_dir", cfg.Timew.DataDir)
	return nil
}

func setupLogging(w io.Writer, level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

// newFormatter builds the status formatter. --format wins over the config file.
func newFormatter(cmd *cobra.Command) (*output.Formatter, error) {
	name := cfg.Output.Format
	if formatFlag != "" {
		name = formatFlag
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return output.New(cmd.OutOrStdout(), format, output.ColorRequested(noColor)), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Execute runs the root command.
func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
