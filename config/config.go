package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"hostmon/strutil"
)

// UI mode names accepted in the ui.mode key and the -mode flag.
const (
	UIModeAuto     = "auto"
	UIModePlain    = "plain"
	UIModeANSI     = "ansi"
	UIModeTview    = "tview"
	UIModeHeadless = "headless"
)

var uiModes = []string{UIModeAuto, UIModePlain, UIModeANSI, UIModeTview, UIModeHeadless}

const (
	defaultIntervalSeconds    = 2
	defaultTopProcesses       = 10
	defaultMaxDisks           = 4
	defaultMaxInterfaces      = 4
	defaultTargetFPS          = 30
	defaultLogLines           = 5
	defaultLogDir             = "logs"
	defaultRetentionDays      = 7
	defaultDedupWindowSeconds = 30
	defaultDedupMaxKeys       = 256
)

// Config represents the complete monitor configuration
type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
	UI      UIConfig      `yaml:"ui"`
	Stream  StreamConfig  `yaml:"stream"`
	Logging LoggingConfig `yaml:"logging"`
}

// MonitorConfig contains sampling settings
type MonitorConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	TopProcesses    int `yaml:"top_processes"`
}

// UIConfig contains front-end settings
type UIConfig struct {
	Mode          string `yaml:"mode"`
	Color         bool   `yaml:"color"`
	ClearScreen   bool   `yaml:"clear_screen"`
	MaxDisks      int    `yaml:"max_disks"`
	MaxInterfaces int    `yaml:"max_interfaces"`
	TargetFPS     int    `yaml:"target_fps"`
	LogLines      int    `yaml:"log_lines"`
}

// StreamConfig contains JSON line stream settings
type StreamConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig contains log file and warning dedup settings
type LoggingConfig struct {
	Enabled            bool   `yaml:"enabled"`
	Dir                string `yaml:"dir"`
	RetentionDays      int    `yaml:"retention_days"`
	DedupWindowSeconds int    `yaml:"dedup_window_seconds"`
	DedupMaxKeys       int    `yaml:"dedup_max_keys"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			IntervalSeconds: defaultIntervalSeconds,
			TopProcesses:    defaultTopProcesses,
		},
		UI: UIConfig{
			Mode:          UIModeAuto,
			Color:         true,
			ClearScreen:   true,
			MaxDisks:      defaultMaxDisks,
			MaxInterfaces: defaultMaxInterfaces,
			TargetFPS:     defaultTargetFPS,
			LogLines:      defaultLogLines,
		},
		Stream: StreamConfig{
			Enabled: false,
			Path:    "-",
		},
		Logging: LoggingConfig{
			Enabled:            false,
			Dir:                defaultLogDir,
			RetentionDays:      defaultRetentionDays,
			DedupWindowSeconds: defaultDedupWindowSeconds,
			DedupMaxKeys:       defaultDedupMaxKeys,
		},
	}
}

// Load loads configuration from a YAML file. Keys absent from the file
// keep their default values; a missing file is the caller's concern.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Normalize lower-cases enum fields and clamps out-of-range numbers back
// to their defaults so later stages can trust the values.
func (c *Config) Normalize() {
	c.UI.Mode = strutil.NormalizeLower(c.UI.Mode)
	if c.UI.Mode == "" {
		c.UI.Mode = UIModeAuto
	}
	if c.Monitor.IntervalSeconds < 1 {
		c.Monitor.IntervalSeconds = 1
	}
	if c.Monitor.TopProcesses < 0 {
		c.Monitor.TopProcesses = 0
	}
	if c.UI.MaxDisks <= 0 {
		c.UI.MaxDisks = defaultMaxDisks
	}
	if c.UI.MaxInterfaces <= 0 {
		c.UI.MaxInterfaces = defaultMaxInterfaces
	}
	if c.UI.TargetFPS <= 0 {
		c.UI.TargetFPS = defaultTargetFPS
	}
	if c.UI.LogLines <= 0 {
		c.UI.LogLines = defaultLogLines
	}
	if c.Stream.Path == "" {
		c.Stream.Path = "-"
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = defaultLogDir
	}
	if c.Logging.RetentionDays < 1 {
		c.Logging.RetentionDays = defaultRetentionDays
	}
	if c.Logging.DedupWindowSeconds < 0 {
		c.Logging.DedupWindowSeconds = 0
	}
	if c.Logging.DedupMaxKeys < 0 {
		c.Logging.DedupMaxKeys = 0
	}
}

// Validate checks the constraints Normalize cannot repair. Call after
// Normalize.
func (c *Config) Validate() error {
	if !slices.Contains(uiModes, c.UI.Mode) {
		if suggestion := suggestUIMode(c.UI.Mode); suggestion != "" {
			return fmt.Errorf("unknown ui.mode %q (did you mean %q?)", c.UI.Mode, suggestion)
		}
		return fmt.Errorf("unknown ui.mode %q", c.UI.Mode)
	}
	if c.Stream.Enabled && c.Stream.Path == "-" && c.UI.Mode != UIModeHeadless {
		return fmt.Errorf("stream.path %q writes snapshots to stdout and requires ui.mode %q, not %q",
			c.Stream.Path, UIModeHeadless, c.UI.Mode)
	}
	return nil
}

// suggestUIMode returns the closest known mode name within an edit
// distance of two, or an empty string when nothing is close enough.
func suggestUIMode(mode string) string {
	best := ""
	bestDistance := 3
	for _, candidate := range uiModes {
		if d := levenshtein.ComputeDistance(mode, candidate); d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}
	return best
}

// Print displays the effective configuration
func (c *Config) Print() {
	fmt.Printf("Monitor: every %ds, top %d processes\n", c.Monitor.IntervalSeconds, c.Monitor.TopProcesses)
	fmt.Printf("UI: mode=%s color=%t fps=%d\n", c.UI.Mode, c.UI.Color, c.UI.TargetFPS)
	if c.Stream.Enabled {
		target := c.Stream.Path
		if target == "-" {
			target = "stdout"
		}
		fmt.Printf("Stream: %s\n", target)
	}
	if c.Logging.Enabled {
		fmt.Printf("Logging: dir=%s retention=%dd\n", c.Logging.Dir, c.Logging.RetentionDays)
	}
}
