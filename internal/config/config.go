// Package config loads nbreview's settings from layered sources, lowest to highest priority:
//   - built-in defaults
//   - the user file, ~/.config/nbreview/config.toml
//   - the nearest .nbreview.toml found walking up from the working directory
//   - NBREVIEW_* environment variables
//
// Each setting records which source set it last (see Config.Provenance). Unknown keys in a file are an error, so typos do not go unnoticed.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// File names.
const (
	ProjectFileName = ".nbreview.toml"
	userFileSubpath = ".config/nbreview/config.toml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ErrInvalid is returned (wrapped) when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the effective configuration.
type Config struct {
	Width         int    `toml:"width" json:"width"` // 0 means the terminal width
	Color         string `toml:"color" json:"color"` // ColorAuto, ColorAlways, or ColorNever
	TabWidth      int    `toml:"tab_width" json:"tab_width"`
	ContextLines  int    `toml:"context_lines" json:"context_lines"` // unified diff context
	ShowUnchanged bool   `toml:"show_unchanged" json:"show_unchanged"`

	MaxCells    int `toml:"max_cells" json:"max_cells"`
	MaxLines    int `toml:"max_lines" json:"max_lines"`
	Parallelism int `toml:"parallelism" json:"parallelism"` // 0 means GOMAXPROCS

	ReviewDB string `toml:"review_db" json:"review_db"`
	Reviewer string `toml:"reviewer" json:"reviewer"`

	// Provenance maps each setting's key to the source that set it.
	Provenance map[string]Source `toml:"-" json:"provenance"`
}

// Source identifies where a setting came from.
type Source struct {
	Type string `json:"type"`           // "default", "user_file", "project_file", or "env"
	Path string `json:"path,omitempty"` // file path or env var name
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	c := &Config{
		Color:        ColorAuto,
		TabWidth:     4,
		ContextLines: 3,
		MaxCells:     500,
		MaxLines:     2000,
		ReviewDB:     InUserConfigDirectory(".config/nbreview/reviews.db"),
	}
	c.Provenance = map[string]Source{}
	for _, k := range Keys() {
		c.Provenance[k] = Source{Type: "default"}
	}
	return c
}

// Keys returns the setting keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(envVars))
	for _, ev := range envVars {
		keys = append(keys, ev.key)
	}
	sort.Strings(keys)
	return keys
}

// Loader loads a Config. The zero value reads the real user file, working directory, and environment.
type Loader struct {
	UserFile  string                         // "" means ~/.config/nbreview/config.toml; "-" disables the user file
	StartDir  string                         // where the project file search begins; "" means the working directory
	LookupEnv func(key string) (string, bool) // nil means os.LookupEnv
}

// Load is Loader{}.Load.
func Load() (*Config, error) {
	return Loader{}.Load()
}

// Load applies every source in priority order and validates the result.
func (l Loader) Load() (*Config, error) {
	cfg := Defaults()

	userFile := l.UserFile
	if userFile == "" {
		userFile = InUserConfigDirectory(userFileSubpath)
	}
	if userFile != "-" {
		if err := cfg.applyFile(ExpandPath(userFile), "user_file"); err != nil {
			return nil, err
		}
	}

	if project := FindNearest(ProjectFileName, l.StartDir); project != "" {
		if err := cfg.applyFile(project, "project_file"); err != nil {
			return nil, err
		}
	}

	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile decodes the TOML file at path over c. A missing, unreadable, or blank file contributes nothing.
func (c *Config) applyFile(path, sourceType string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	md, err := toml.Decode(string(data), c)
	if err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		names := make([]string, len(undecoded))
		for i, k := range undecoded {
			names[i] = k.String()
		}
		return fmt.Errorf("config: %s: unknown keys: %s", path, strings.Join(names, ", "))
	}
	for _, k := range md.Keys() {
		c.Provenance[k.String()] = Source{Type: sourceType, Path: path}
	}
	return nil
}

// envVar binds one environment variable to one setting.
type envVar struct {
	name string
	key  string
	set  func(c *Config, v string) error
}

func intSetter(field func(c *Config) *int) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("not an integer: %q", v)
		}
		*field(c) = n
		return nil
	}
}

func stringSetter(field func(c *Config) *string) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		*field(c) = strings.TrimSpace(v)
		return nil
	}
}

var envVars = []envVar{
	{name: "NBREVIEW_WIDTH", key: "width", set: intSetter(func(c *Config) *int { return &c.Width })},
	{name: "NBREVIEW_COLOR", key: "color", set: stringSetter(func(c *Config) *string { return &c.Color })},
	{name: "NBREVIEW_TAB_WIDTH", key: "tab_width", set: intSetter(func(c *Config) *int { return &c.TabWidth })},
	{name: "NBREVIEW_CONTEXT_LINES", key: "context_lines", set: intSetter(func(c *Config) *int { return &c.ContextLines })},
	{name: "NBREVIEW_SHOW_UNCHANGED", key: "show_unchanged", set: func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("not a boolean: %q", v)
		}
		c.ShowUnchanged = b
		return nil
	}},
	{name: "NBREVIEW_MAX_CELLS", key: "max_cells", set: intSetter(func(c *Config) *int { return &c.MaxCells })},
	{name: "NBREVIEW_MAX_LINES", key: "max_lines", set: intSetter(func(c *Config) *int { return &c.MaxLines })},
	{name: "NBREVIEW_PARALLELISM", key: "parallelism", set: intSetter(func(c *Config) *int { return &c.Parallelism })},
	{name: "NBREVIEW_REVIEW_DB", key: "review_db", set: stringSetter(func(c *Config) *string { return &c.ReviewDB })},
	{name: "NBREVIEW_REVIEWER", key: "reviewer", set: stringSetter(func(c *Config) *string { return &c.Reviewer })},
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, ev := range envVars {
		v, ok := lookup(ev.name)
		if !ok {
			continue
		}
		if err := ev.set(c, v); err != nil {
			return fmt.Errorf("config: %s: %w", ev.name, err)
		}
		c.Provenance[ev.key] = Source{Type: "env", Path: ev.name}
	}
	return nil
}

// Validate checks c's settings.
func (c *Config) Validate() error {
	var problems []string
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		problems = append(problems, fmt.Sprintf("color must be auto, always, or never (got %q)", c.Color))
	}
	if c.Width < 0 {
		problems = append(problems, fmt.Sprintf("width must be >= 0 (got %d)", c.Width))
	}
	if c.TabWidth < 1 || c.TabWidth > 16 {
		problems = append(problems, fmt.Sprintf("tab_width must be in [1, 16] (got %d)", c.TabWidth))
	}
	for _, f := range []struct {
		key string
		v   int
	}{{"context_lines", c.ContextLines}, {"max_cells", c.MaxCells}, {"max_lines", c.MaxLines}, {"parallelism", c.Parallelism}} {
		if f.v < 0 {
			problems = append(problems, fmt.Sprintf("%s must be >= 0 (got %d)", f.key, f.v))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// FindNearest searches upward from start (a directory or file; "" means the working directory) for the first readable, non-blank file named fileName, and
// returns its path, or "" if there is none. It panics if fileName is absolute.
func FindNearest(fileName, start string) string {
	if filepath.IsAbs(fileName) {
		panic("fileName shouldn't be absolute")
	}
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		start = wd
	}
	start = ExpandPath(start)
	if fi, err := os.Stat(start); err == nil && !fi.IsDir() {
		start = filepath.Dir(start)
	}

	for dir := start; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, fileName)
		if data, err := os.ReadFile(candidate); err == nil && strings.TrimSpace(string(data)) != "" {
			return candidate
		}
		if filepath.Dir(dir) == dir {
			return ""
		}
	}
}
