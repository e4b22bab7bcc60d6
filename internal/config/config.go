package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kappaduck/aquila/internal/platform"
)

const (
	DefaultBackend     = "x11"
	DefaultSyncTimeout = 2 * time.Second
	DefaultTitle       = "aquila"
	DefaultWidth       = 800
	DefaultHeight      = 600
)

// KnownBackends lists the backend names a config may select. Which of them are
// compiled in depends on the platform and build tags.
var KnownBackends = []string{"x11", "glfw", "memory"}

// Duration is a time.Duration that reads and writes Go duration strings.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

// Config is the effective configuration after defaults and every loaded file
// have been merged.
type Config struct {
	Backend     string        `yaml:"backend"`
	Logging     LoggingConfig `yaml:"logging"`
	Subsystems  []string      `yaml:"subsystems"`
	SyncTimeout Duration      `yaml:"sync_timeout"`
	Window      WindowConfig  `yaml:"window"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WindowConfig describes the window opened by the sandbox.
type WindowConfig struct {
	Title   string   `yaml:"title"`
	Width   int      `yaml:"width"`
	Height  int      `yaml:"height"`
	Flags   []string `yaml:"flags"`
	Opacity float32  `yaml:"opacity"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend: DefaultBackend,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Subsystems:  []string{"video", "events"},
		SyncTimeout: Duration(DefaultSyncTimeout),
		Window: WindowConfig{
			Title:   DefaultTitle,
			Width:   DefaultWidth,
			Height:  DefaultHeight,
			Flags:   []string{"resizable"},
			Opacity: 1,
		},
	}
}

// ValidationError ties a config error to the key that caused it and, when
// known, the file position the key was read from.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (c *Config) Validate() error {
	if !isKnownBackend(c.Backend) {
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: %s", strings.Join(KnownBackends, ", "))}
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return &ValidationError{Path: "logging.level", Err: err}
	}
	switch c.Logging.Format {
	case "text", "json", "auto":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("logging.format must be one of: text, json, auto")}
	}
	mask, err := platform.ParseSubsystems(c.Subsystems)
	if err != nil {
		return &ValidationError{Path: "subsystems", Err: err}
	}
	if mask == platform.SubsystemNone {
		return &ValidationError{Path: "subsystems", Err: fmt.Errorf("subsystems must not be empty")}
	}
	if c.SyncTimeout <= 0 {
		return &ValidationError{Path: "sync_timeout", Err: fmt.Errorf("sync_timeout must be > 0")}
	}
	if c.Window.Width <= 0 {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("window.width must be > 0")}
	}
	if c.Window.Height <= 0 {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("window.height must be > 0")}
	}
	flags, err := platform.ParseWindowFlags(c.Window.Flags)
	if err != nil {
		return &ValidationError{Path: "window.flags", Err: err}
	}
	if extra := flags &^ platform.CreationFlags; extra != 0 {
		return &ValidationError{Path: "window.flags", Err: fmt.Errorf("flags cannot be requested at creation: %s", extra)}
	}
	if !(c.Window.Opacity >= 0 && c.Window.Opacity <= 1) {
		return &ValidationError{Path: "window.opacity", Err: fmt.Errorf("window.opacity must be between 0 and 1")}
	}
	return nil
}

// SubsystemMask returns the configured subsystems as a mask.
func (c *Config) SubsystemMask() (platform.Subsystem, error) {
	return platform.ParseSubsystems(c.Subsystems)
}

// WindowFlags returns the configured creation flags as a mask.
func (c *Config) WindowFlags() (platform.WindowFlags, error) {
	return platform.ParseWindowFlags(c.Window.Flags)
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", name)
}

func isKnownBackend(name string) bool {
	for _, b := range KnownBackends {
		if b == name {
			return true
		}
	}
	return false
}
