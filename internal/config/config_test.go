package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func createTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

// clearEnv removes overrides inherited from the developer's shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TIMEBAR_CONFIG", "TIMEBAR_SHOW_SECONDS", "TIMEBAR_FALLBACK_TAG_INDEX",
		"TIMEBAR_IDLE_THRESHOLD", "TIMEBAR_TIMEW_BINARY", "TIMEWARRIORDB",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("TIMEBAR_TAG_CHARACTER", "")
	os.Unsetenv("TIMEBAR_TAG_CHARACTER")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.ShowSeconds {
		t.Error("show_seconds should default to true")
	}
	if cfg.TagCharacter != "-" {
		t.Errorf("Expected tag_character '-', got %q", cfg.TagCharacter)
	}
	if cfg.FallbackTagIndex != -1 {
		t.Errorf("Expected fallback_tag_index -1, got %d", cfg.FallbackTagIndex)
	}
	if cfg.IdleThreshold != 10 {
		t.Errorf("Expected idle_threshold 10, got %d", cfg.IdleThreshold)
	}
	if cfg.Timew.Binary != "timew" {
		t.Errorf("Expected timew binary 'timew', got %q", cfg.Timew.Binary)
	}
	if cfg.Timew.Timeout() != time.Second {
		t.Errorf("Expected 1s timeout, got %v", cfg.Timew.Timeout())
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Expected json output, got %q", cfg.Output.Format)
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("Default config should validate, got %v", errs)
	}
}

func TestStatusOptions(t *testing.T) {
	cfg := Default()
	cfg.ShowSeconds = false
	cfg.TagCharacter = "/"
	cfg.FallbackTagIndex = 0
	cfg.IdleThreshold = 25
	cfg.Output.Tooltip = true
	cfg.Output.MaxTagWidth = 12

	opts := cfg.StatusOptions()
	if opts.ShowSeconds || opts.TagDelimiter != "/" || opts.FallbackTagIndex != 0 ||
		opts.IdleThresholdMinutes != 25 || !opts.Tooltip || opts.MaxTagWidth != 12 {
		t.Errorf("StatusOptions() = %+v", opts)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	clearEnv(t)

	// When the config file doesn't exist, Load should return defaults (not an error).
	cfg, err := Load("/definitely/does/not/exist/config.toml")
	if err != nil {
		t.Errorf("Expected no error for missing config file (should return defaults): %v", err)
	}
	if cfg == nil || cfg.TagCharacter != "-" {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	content := `
show_seconds = false
tag_character = ":"
fallback_tag_index = 0
idle_threshold = 20

[timew]
binary = "/usr/local/bin/timew"
timeout_ms = 500
data_dir = "/var/lib/timew"

[output]
format = "text"
tooltip = true
max_tag_width = 16

[watch]
interval_seconds = 5
`
	path := createTempConfig(t, "config.toml", content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ShowSeconds {
		t.Error("Expected show_seconds false")
	}
	if cfg.TagCharacter != ":" {
		t.Errorf("Expected tag_character ':', got %q", cfg.TagCharacter)
	}
	if cfg.FallbackTagIndex != 0 {
		t.Errorf("Expected fallback_tag_index 0, got %d", cfg.FallbackTagIndex)
	}
	if cfg.IdleThreshold != 20 {
		t.Errorf("Expected idle_threshold 20, got %d", cfg.IdleThreshold)
	}
	if cfg.Timew.Binary != "/usr/local/bin/timew" {
		t.Errorf("Expected custom binary, got %q", cfg.Timew.Binary)
	}
	if cfg.Timew.Timeout() != 500*time.Millisecond {
		t.Errorf("Expected 500ms timeout, got %v", cfg.Timew.Timeout())
	}
	if cfg.Timew.DataDir != "/var/lib/timew" {
		t.Errorf("Expected data_dir /var/lib/timew, got %q", cfg.Timew.DataDir)
	}
	if cfg.Output.Format != "text" || !cfg.Output.Tooltip || cfg.Output.MaxTagWidth != 16 {
		t.Errorf("Unexpected output config %+v", cfg.Output)
	}
	if cfg.Watch.Interval() != 5*time.Second {
		t.Errorf("Expected 5s watch interval, got %v", cfg.Watch.Interval())
	}
	// Missing keys keep their defaults.
	if cfg.Watch.Debounce() != 100*time.Millisecond {
		t.Errorf("Expected default debounce, got %v", cfg.Watch.Debounce())
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected default log level, got %q", cfg.Log.Level)
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)

	content := `
show_seconds: false
fallback_tag_index: -2
timew:
  timeout_ms: 750
output:
  tooltip: true
`
	path := createTempConfig(t, "config.yaml", content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load YAML config: %v", err)
	}
	if cfg.ShowSeconds {
		t.Error("Expected show_seconds false")
	}
	if cfg.FallbackTagIndex != -2 {
		t.Errorf("Expected fallback_tag_index -2, got %d", cfg.FallbackTagIndex)
	}
	if cfg.Timew.TimeoutMs != 750 {
		t.Errorf("Expected timeout_ms 750, got %d", cfg.Timew.TimeoutMs)
	}
	if cfg.Timew.Binary != "timew" {
		t.Errorf("Expected default binary, got %q", cfg.Timew.Binary)
	}
	if !cfg.Output.Tooltip {
		t.Error("Expected tooltip enabled")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	clearEnv(t)

	if _, err := Load(createTempConfig(t, "config.toml", `this is not valid TOML {{{`)); err == nil {
		t.Error("Expected error for invalid TOML")
	}
	if _, err := Load(createTempConfig(t, "config.yml", "show_seconds: [1, 2")); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := createTempConfig(t, "config.toml", "show_seconds = true\nidle_threshold = 20\n")
	t.Setenv("TIMEBAR_SHOW_SECONDS", "false")
	t.Setenv("TIMEBAR_TAG_CHARACTER", "_")
	t.Setenv("TIMEBAR_FALLBACK_TAG_INDEX", "1")
	t.Setenv("TIMEBAR_IDLE_THRESHOLD", "3")
	t.Setenv("TIMEBAR_TIMEW_BINARY", "/opt/timew")
	t.Setenv("TIMEWARRIORDB", "/srv/timewdb")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ShowSeconds {
		t.Error("Expected env to disable show_seconds")
	}
	if cfg.TagCharacter != "_" {
		t.Errorf("Expected tag_character '_', got %q", cfg.TagCharacter)
	}
	if cfg.FallbackTagIndex != 1 {
		t.Errorf("Expected fallback_tag_index 1, got %d", cfg.FallbackTagIndex)
	}
	if cfg.IdleThreshold != 3 {
		t.Errorf("Expected env idle_threshold 3 over file 20, got %d", cfg.IdleThreshold)
	}
	if cfg.Timew.Binary != "/opt/timew" {
		t.Errorf("Expected binary /opt/timew, got %q", cfg.Timew.Binary)
	}
	if cfg.Timew.DataDir != "/srv/timewdb" {
		t.Errorf("Expected data_dir /srv/timewdb, got %q", cfg.Timew.DataDir)
	}
}

func TestEnvOverridesInvalid(t *testing.T) {
	clearEnv(t)

	t.Setenv("TIMEBAR_FALLBACK_TAG_INDEX", "last")
	if _, err := Load("/nonexistent/config.toml"); err == nil {
		t.Error("Expected error for non-numeric TIMEBAR_FALLBACK_TAG_INDEX")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative idle threshold", func(c *Config) { c.IdleThreshold = -1 }, "idle_threshold"},
		{"empty binary", func(c *Config) { c.Timew.Binary = " " }, "timew.binary"},
		{"zero timeout", func(c *Config) { c.Timew.TimeoutMs = 0 }, "timew.timeout_ms"},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"negative tag width", func(c *Config) { c.Output.MaxTagWidth = -4 }, "output.max_tag_width"},
		{"zero watch interval", func(c *Config) { c.Watch.IntervalSeconds = 0 }, "watch.interval_seconds"},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -1 }, "watch.debounce_ms"},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			errs := Validate(cfg)
			if len(errs) != 1 {
				t.Fatalf("Expected 1 error, got %v", errs)
			}
			if !strings.HasPrefix(errs[0].Error(), tc.field) {
				t.Errorf("Expected error about %s, got %v", tc.field, errs[0])
			}
		})
	}

	if errs := Validate(nil); len(errs) != 1 {
		t.Errorf("Validate(nil) = %v, want one error", errs)
	}
}

func TestDefaultPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg")

	if path := DefaultPath(); path != "/custom/xdg/timebar/config.toml" {
		t.Errorf("Expected /custom/xdg/timebar/config.toml, got %s", path)
	}

	t.Setenv("TIMEBAR_CONFIG", "/etc/timebar.yaml")
	if path := DefaultPath(); path != "/etc/timebar.yaml" {
		t.Errorf("Expected TIMEBAR_CONFIG to win, got %s", path)
	}
}

func TestDefaultDataDir(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "")

	if got, want := DefaultDataDir(), filepath.Join(home, ".local", "share", "timewarrior"); got != want {
		t.Errorf("DefaultDataDir() = %q, want %q", got, want)
	}

	legacy := filepath.Join(home, ".timewarrior")
	if err := os.Mkdir(legacy, 0755); err != nil {
		t.Fatal(err)
	}
	if got := DefaultDataDir(); got != legacy {
		t.Errorf("DefaultDataDir() = %q, want legacy %q", got, legacy)
	}

	t.Setenv("TIMEWARRIORDB", "/data/timew")
	if got := DefaultDataDir(); got != "/data/timew" {
		t.Errorf("DefaultDataDir() = %q, want TIMEWARRIORDB", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get user home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~", home},
		{"~/foo", filepath.Join(home, "foo")},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ExpandHome(tt.input)
			if got != tt.expected {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPrint(t *testing.T) {
	cfg := Default()
	var buf bytes.Buffer
	if err := Print(cfg, &buf); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	output := buf.String()
	for _, section := range []string{"show_seconds = true", `tag_character = "-"`, "fallback_tag_index = -1", "idle_threshold = 10", "[timew]", "[output]", "[watch]", "[log]"} {
		if !strings.Contains(output, section) {
			t.Errorf("Expected output to contain %s", section)
		}
	}
}

func TestCreateDefault(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	t.Run("toml", func(t *testing.T) {
		path, err := CreateDefault(filepath.Join(tmpDir, "timebar", "config.toml"))
		if err != nil {
			t.Fatalf("CreateDefault failed: %v", err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Created config is not valid: %v", err)
		}
		if cfg.IdleThreshold != 10 || !cfg.ShowSeconds {
			t.Errorf("Round-tripped config lost defaults: %+v", cfg)
		}

		if _, err := CreateDefault(path); err == nil {
			t.Error("Expected error when config already exists")
		}
	})

	t.Run("yaml", func(t *testing.T) {
		path, err := CreateDefault(filepath.Join(tmpDir, "config.yaml"))
		if err != nil {
			t.Fatalf("CreateDefault failed: %v", err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Created YAML config is not valid: %v", err)
		}
		if cfg.FallbackTagIndex != -1 || cfg.Timew.TimeoutMs != 1000 {
			t.Errorf("Round-tripped YAML config lost defaults: %+v", cfg)
		}
	})
}
