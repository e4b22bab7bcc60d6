package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at a dotted path and where it came from.
//
// Supported paths:
//
//	backend
//	logging.level
//	logging.format
//	subsystems
//	sync_timeout
//	window.title
//	window.width
//	window.height
//	window.flags
//	window.opacity
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// Paths lists every path Explain accepts.
func Paths() []string {
	return []string{
		"backend",
		"logging.level",
		"logging.format",
		"subsystems",
		"sync_timeout",
		"window.title",
		"window.width",
		"window.height",
		"window.flags",
		"window.opacity",
	}
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch strings.TrimSpace(path) {
	case "backend":
		return cfg.Backend, nil
	case "logging.level":
		return cfg.Logging.Level, nil
	case "logging.format":
		return cfg.Logging.Format, nil
	case "subsystems":
		return cfg.Subsystems, nil
	case "sync_timeout":
		return cfg.SyncTimeout.String(), nil
	case "window.title":
		return cfg.Window.Title, nil
	case "window.width":
		return cfg.Window.Width, nil
	case "window.height":
		return cfg.Window.Height, nil
	case "window.flags":
		return cfg.Window.Flags, nil
	case "window.opacity":
		return cfg.Window.Opacity, nil
	}
	return nil, fmt.Errorf("unknown config path %q", path)
}
