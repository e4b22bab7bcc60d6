package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceKind says whether a value was set by a file or left at its default.
type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source locates the YAML value that set a config key.
type Source struct {
	Kind   SourceKind
	File   string
	Line   int
	Column int
}

func (s Source) String() string {
	if s.Kind == SourceFile && s.File != "" {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
	return string(s.Kind)
}

// LoadResult is a validated config plus where each key came from.
type LoadResult struct {
	Config  *Config
	Sources map[string]Source // dotted key -> last file to set it
	Files   []string          // every file read, includes before their includer
}

// ErrIncludeCycle is wrapped by an IncludeError when a file ends up including
// itself.
var ErrIncludeCycle = errors.New("include cycle")

// IncludeError reports an include entry that could not be loaded. Source
// points at the entry itself, so list items are told apart.
type IncludeError struct {
	Source  Source
	Include string
	Err     error
}

func (e *IncludeError) Error() string {
	return fmt.Sprintf("%s: include %q: %v", e.Source, e.Include, e.Err)
}

func (e *IncludeError) Unwrap() error { return e.Err }

// DefaultConfigPath is $XDG_CONFIG_HOME/aquila/config.yaml, falling back to
// ~/.config when the variable is unset.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "aquila", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config path: %w", err)
	}
	return filepath.Join(home, ".config", "aquila", "config.yaml"), nil
}

// Load reads the configuration from DefaultConfigPath.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load keeping the per-key sources for `config explain`.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath layers path and its includes over the defaults. A missing file
// yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	top := layer{sources: map[string]Source{}}

	if _, err := os.Stat(path); err == nil {
		canon, err := canonicalPath(path)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		l := &layerLoader{visited: map[string]bool{}}
		if top, err = l.load(canon); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg, err := BuildEffectiveConfig(top.raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, withSource(err, top.sources)
	}
	return &LoadResult{Config: cfg, Sources: top.sources, Files: top.files}, nil
}

// layer is one file merged over everything it includes.
type layer struct {
	raw     RawConfig
	sources map[string]Source
	files   []string
}

func (l *layer) absorb(over layer) {
	l.raw = l.raw.merge(over.raw)
	maps.Copy(l.sources, over.sources)
	l.files = append(l.files, over.files...)
}

// layerLoader walks the include graph depth first. A file reached twice by
// different paths is read once; a file reached from itself is an error.
type layerLoader struct {
	visited map[string]bool
	chain   []string
}

func (l *layerLoader) load(file string) (layer, error) {
	l.visited[file] = true
	l.chain = append(l.chain, file)
	defer func() { l.chain = l.chain[:len(l.chain)-1] }()

	data, err := os.ReadFile(file)
	if err != nil {
		return layer{}, fmt.Errorf("%s: read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return layer{}, fmt.Errorf("%s: parse: %w", file, err)
	}
	var raw RawConfig
	if err := decodeStrict(data, &raw); err != nil {
		return layer{}, fmt.Errorf("%s: %w", file, err)
	}

	out := layer{sources: map[string]Source{}}
	entries := includeNodes(&doc)
	for i, inc := range raw.Include {
		at := Source{Kind: SourceFile, File: file}
		if i < len(entries) {
			at.Line, at.Column = entries[i].Line, entries[i].Column
		}
		targets, err := expandInclude(file, inc)
		if err != nil {
			return layer{}, &IncludeError{Source: at, Include: inc, Err: err}
		}
		for _, target := range targets {
			canon, err := canonicalPath(target)
			if err != nil {
				return layer{}, &IncludeError{Source: at, Include: inc, Err: err}
			}
			if slices.Contains(l.chain, canon) {
				cycle := fmt.Errorf("%w: %s -> %s", ErrIncludeCycle, strings.Join(l.chain, " -> "), canon)
				return layer{}, &IncludeError{Source: at, Include: inc, Err: cycle}
			}
			if l.visited[canon] {
				continue
			}
			sub, err := l.load(canon)
			if err != nil {
				return layer{}, err
			}
			out.absorb(sub)
		}
	}

	out.absorb(layer{raw: raw, sources: fileSources(&doc, file), files: []string{file}})
	return out, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// canonicalPath makes path absolute and resolves symlinks where it can, so a
// file is recognised whatever name it is included by.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// expandInclude resolves include against the directory of the including file.
// A directory stands for its .yaml and .yml files in name order.
func expandInclude(from, include string) ([]string, error) {
	path, err := expandHome(include)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(from), path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	// ReadDir sorts by name.
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			if !e.IsDir() {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	}
	return files, nil
}

func expandHome(path string) (string, error) {
	switch {
	case path == "":
		return "", errors.New("empty path")
	case path != "~" && !strings.HasPrefix(path, "~/"):
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc != nil && doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}

// includeNodes returns the YAML nodes of the include entries, in the order
// IncludeList decodes them.
func includeNodes(doc *yaml.Node) []*yaml.Node {
	root := documentRoot(doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		v := root.Content[i+1]
		if v.Kind == yaml.SequenceNode {
			return v.Content
		}
		return []*yaml.Node{v}
	}
	return nil
}

// fileSources maps every dotted key in doc, mappings included, to the
// position of its value.
func fileSources(doc *yaml.Node, file string) map[string]Source {
	out := map[string]Source{}
	var walk func(n *yaml.Node, prefix string)
	walk = func(n *yaml.Node, prefix string) {
		if n == nil || n.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i].Value, n.Content[i+1]
			if prefix != "" {
				key = prefix + "." + key
			}
			out[key] = Source{Kind: SourceFile, File: file, Line: val.Line, Column: val.Column}
			walk(val, key)
		}
	}
	walk(documentRoot(doc), "")
	return out
}

// withSource fills in where a failing key was set.
func withSource(err error, sources map[string]Source) error {
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Path != "" {
		if src, ok := sources[verr.Path]; ok {
			verr.Source = src
		}
	}
	return err
}
