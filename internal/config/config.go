package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/timebar/internal/status"
	"github.com/Dicklesworthstone/timebar/internal/util"
)

// Config represents the main configuration
type Config struct {
	ShowSeconds      bool   `toml:"show_seconds" yaml:"show_seconds"`             // Show seconds in the running task total
	TagCharacter     string `toml:"tag_character" yaml:"tag_character"`           // Substring marking the display tag
	FallbackTagIndex int    `toml:"fallback_tag_index" yaml:"fallback_tag_index"` // Tag used when none contains tag_character
	IdleThreshold    int    `toml:"idle_threshold" yaml:"idle_threshold"`         // Minutes after stopping before the state turns idle

	Timew  TimewConfig  `toml:"timew" yaml:"timew"`
	Output OutputConfig `toml:"output" yaml:"output"`
	Watch  WatchConfig  `toml:"watch" yaml:"watch"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

// TimewConfig configures the timewarrior backend.
type TimewConfig struct {
	Binary    string `toml:"binary" yaml:"binary"`         // Executable name or path
	TimeoutMs int    `toml:"timeout_ms" yaml:"timeout_ms"` // Bound on every backend call
	DataDir   string `toml:"data_dir" yaml:"data_dir"`     // Database directory watched in watch mode
}

// OutputConfig configures the status line.
type OutputConfig struct {
	Format      string `toml:"format" yaml:"format"`               // "json" or "text"
	Tooltip     bool   `toml:"tooltip" yaml:"tooltip"`             // Include per-task totals as tooltip
	MaxTagWidth int    `toml:"max_tag_width" yaml:"max_tag_width"` // Truncate the display tag (0 = unlimited)
}

// WatchConfig configures continuous output.
type WatchConfig struct {
	IntervalSeconds int `toml:"interval_seconds" yaml:"interval_seconds"`
	DebounceMs      int `toml:"debounce_ms" yaml:"debounce_ms"`
}

// LogConfig configures diagnostics on stderr.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"` // debug, info, warn, error
}

// Timeout returns the backend timeout as a duration.
func (c TimewConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Interval returns the watch re-render cadence.
func (c WatchConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Debounce returns the file change debounce window.
func (c WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// StatusOptions converts the config into projection options.
func (c *Config) StatusOptions() status.Options {
	return status.Options{
		ShowSeconds:          c.ShowSeconds,
		TagDelimiter:         c.TagCharacter,
		FallbackTagIndex:     c.FallbackTagIndex,
		IdleThresholdMinutes: c.IdleThreshold,
		Tooltip:              c.Output.Tooltip,
		MaxTagWidth:          c.Output.MaxTagWidth,
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ShowSeconds:      true,
		TagCharacter:     "-",
		FallbackTagIndex: -1,
		IdleThreshold:    status.DefaultIdleThresholdMinutes,
		Timew: TimewConfig{
			Binary:    "timew",
			TimeoutMs: 1000,
			DataDir:   DefaultDataDir(),
		},
		Output: OutputConfig{
			Format: "json",
		},
		Watch: WatchConfig{
			IntervalSeconds: 1,
			DebounceMs:      100,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	if env := os.Getenv("TIMEBAR_CONFIG"); env != "" {
		return ExpandHome(env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "timebar", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		// Fallback to /tmp when home directory is unavailable (e.g., containers)
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "timebar", "config.toml")
}

// DefaultDataDir returns the timewarrior database directory:
// $TIMEWARRIORDB, then ~/.timewarrior if it exists, then the XDG data dir.
func DefaultDataDir() string {
	if env := os.Getenv("TIMEWARRIORDB"); env != "" {
		return ExpandHome(env)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	legacy := filepath.Join(home, ".timewarrior")
	if info, err := os.Stat(legacy); err == nil && info.IsDir() {
		return legacy
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "timewarrior")
	}
	return filepath.Join(home, ".local", "share", "timewarrior")
}

// Load reads the config file at path over the defaults and applies
// environment overrides (Env > file > Default). A missing file is not an
// error. Files ending in .yaml or .yml are parsed as YAML, anything else as TOML.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if isYAML(path) {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Timew.DataDir = ExpandHome(cfg.Timew.DataDir)
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TIMEBAR_SHOW_SECONDS"); v != "" {
		cfg.ShowSeconds = v == "1" || v == "true"
	}
	if v, ok := os.LookupEnv("TIMEBAR_TAG_CHARACTER"); ok {
		cfg.TagCharacter = v
	}
	if v := os.Getenv("TIMEBAR_FALLBACK_TAG_INDEX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TIMEBAR_FALLBACK_TAG_INDEX: %w", err)
		}
		cfg.FallbackTagIndex = n
	}
	if v := os.Getenv("TIMEBAR_IDLE_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TIMEBAR_IDLE_THRESHOLD: %w", err)
		}
		cfg.IdleThreshold = n
	}
	if v := os.Getenv("TIMEBAR_TIMEW_BINARY"); v != "" {
		cfg.Timew.Binary = v
	}
	if v := os.Getenv("TIMEWARRIORDB"); v != "" {
		cfg.Timew.DataDir = v
	}
	return nil
}

// Validate checks the config and returns every problem found.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{fmt.Errorf("config is nil")}
	}

	var errs []error

	if cfg.IdleThreshold < 0 {
		errs = append(errs, fmt.Errorf("idle_threshold: must be non-negative, got %d", cfg.IdleThreshold))
	}
	if strings.TrimSpace(cfg.Timew.Binary) == "" {
		errs = append(errs, fmt.Errorf("timew.binary: must not be empty"))
	}
	if cfg.Timew.TimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("timew.timeout_ms: must be positive, got %d", cfg.Timew.TimeoutMs))
	}

	switch cfg.Output.Format {
	case "", "json", "text":
		// ok
	default:
		errs = append(errs, fmt.Errorf("output.format: must be \"json\" or \"text\", got %q", cfg.Output.Format))
	}
	if cfg.Output.MaxTagWidth < 0 {
		errs = append(errs, fmt.Errorf("output.max_tag_width: must be non-negative, got %d", cfg.Output.MaxTagWidth))
	}

	if cfg.Watch.IntervalSeconds < 1 {
		errs = append(errs, fmt.Errorf("watch.interval_seconds: must be at least 1, got %d", cfg.Watch.IntervalSeconds))
	}
	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce_ms: must be non-negative, got %d", cfg.Watch.DebounceMs))
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		errs = append(errs, fmt.Errorf("log.level: must be debug, info, warn or error, got %q", cfg.Log.Level))
	}

	return errs
}

// Print writes cfg as a commented TOML file.
func Print(cfg *Config, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintln(&b, "# timebar configuration")
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "# Show seconds in the running task total (the day total never does)")
	fmt.Fprintf(&b, "show_seconds = %t\n", cfg.ShowSeconds)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "# The first tag containing this string is displayed")
	fmt.Fprintf(&b, "tag_character = %q\n", cfg.TagCharacter)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "# Tag displayed when none contains tag_character (negative counts from the end)")
	fmt.Fprintf(&b, "fallback_tag_index = %d\n", cfg.FallbackTagIndex)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "# Minutes after stopping before a paused task is reported as idle")
	fmt.Fprintf(&b, "idle_threshold = %d\n", cfg.IdleThreshold)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "[timew]")
	fmt.Fprintf(&b, "binary = %q\n", cfg.Timew.Binary)
	fmt.Fprintf(&b, "timeout_ms = %d\n", cfg.Timew.TimeoutMs)
	if cfg.Timew.DataDir != "" {
		fmt.Fprintf(&b, "data_dir = %q\n", cfg.Timew.DataDir)
	} else {
		fmt.Fprintln(&b, "# data_dir = \"~/.local/share/timewarrior\"")
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "[output]")
	fmt.Fprintln(&b, "# json for the status bar, text for terminals")
	fmt.Fprintf(&b, "format = %q\n", cfg.Output.Format)
	fmt.Fprintf(&b, "tooltip = %t\n", cfg.Output.Tooltip)
	fmt.Fprintf(&b, "max_tag_width = %d\n", cfg.Output.MaxTagWidth)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "[watch]")
	fmt.Fprintf(&b, "interval_seconds = %d\n", cfg.Watch.IntervalSeconds)
	fmt.Fprintf(&b, "debounce_ms = %d\n", cfg.Watch.DebounceMs)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "[log]")
	fmt.Fprintf(&b, "level = %q\n", cfg.Log.Level)

	_, err := io.WriteString(w, b.String())
	return err
}

// CreateDefault writes the default config to path (DefaultPath when empty)
// and returns the path written. An existing file is never overwritten.
func CreateDefault(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	var data []byte
	if isYAML(path) {
		out, err := yaml.Marshal(Default())
		if err != nil {
			return "", fmt.Errorf("encoding config: %w", err)
		}
		data = out
	} else {
		var buffer strings.Builder
		if err := Print(Default(), &buffer); err != nil {
			return "", err
		}
		data = []byte(buffer.String())
	}

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return "", err
	}

	return path, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}

	return path
}
