package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawLoggingConfig struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
}

type RawWindowConfig struct {
	Title   *string  `yaml:"title"`
	Width   *int     `yaml:"width"`
	Height  *int     `yaml:"height"`
	Flags   []string `yaml:"flags"`
	Opacity *float32 `yaml:"opacity"`
}

// RawConfig is one file's view of the config. Nil fields were not set and
// leave the value underneath untouched.
type RawConfig struct {
	Include     IncludeList       `yaml:"include"`
	Backend     *string           `yaml:"backend"`
	Logging     *RawLoggingConfig `yaml:"logging"`
	Subsystems  []string          `yaml:"subsystems"`
	SyncTimeout *string           `yaml:"sync_timeout"`
	Window      *RawWindowConfig  `yaml:"window"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Backend != nil {
		out.Backend = overlay.Backend
	}
	if overlay.Logging != nil {
		merged := RawLoggingConfig{}
		if out.Logging != nil {
			merged = *out.Logging
		}
		if overlay.Logging.Level != nil {
			merged.Level = overlay.Logging.Level
		}
		if overlay.Logging.Format != nil {
			merged.Format = overlay.Logging.Format
		}
		out.Logging = &merged
	}
	if overlay.Subsystems != nil {
		out.Subsystems = overlay.Subsystems
	}
	if overlay.SyncTimeout != nil {
		out.SyncTimeout = overlay.SyncTimeout
	}
	if overlay.Window != nil {
		merged := RawWindowConfig{}
		if out.Window != nil {
			merged = *out.Window
		}
		if overlay.Window.Title != nil {
			merged.Title = overlay.Window.Title
		}
		if overlay.Window.Width != nil {
			merged.Width = overlay.Window.Width
		}
		if overlay.Window.Height != nil {
			merged.Height = overlay.Window.Height
		}
		if overlay.Window.Flags != nil {
			merged.Flags = overlay.Window.Flags
		}
		if overlay.Window.Opacity != nil {
			merged.Opacity = overlay.Window.Opacity
		}
		out.Window = &merged
	}
	return out
}

// BuildEffectiveConfig applies raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Backend != nil {
		cfg.Backend = *raw.Backend
	}
	if raw.Logging != nil {
		if raw.Logging.Level != nil {
			cfg.Logging.Level = *raw.Logging.Level
		}
		if raw.Logging.Format != nil {
			cfg.Logging.Format = *raw.Logging.Format
		}
	}
	if raw.Subsystems != nil {
		cfg.Subsystems = append([]string(nil), raw.Subsystems...)
	}
	if raw.SyncTimeout != nil {
		d, err := time.ParseDuration(*raw.SyncTimeout)
		if err != nil {
			return nil, &ValidationError{Path: "sync_timeout", Err: fmt.Errorf("invalid duration %q", *raw.SyncTimeout)}
		}
		cfg.SyncTimeout = Duration(d)
	}
	if w := raw.Window; w != nil {
		if w.Title != nil {
			cfg.Window.Title = *w.Title
		}
		if w.Width != nil {
			cfg.Window.Width = *w.Width
		}
		if w.Height != nil {
			cfg.Window.Height = *w.Height
		}
		if w.Flags != nil {
			cfg.Window.Flags = append([]string(nil), w.Flags...)
		}
		if w.Opacity != nil {
			cfg.Window.Opacity = *w.Opacity
		}
	}
	return cfg, nil
}
