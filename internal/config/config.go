// Package config loads tminus settings from a TOML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sadopc/tminus/internal/layout"
)

// Options mirrors the countdown's configuration surface. Values are kept as
// strings so the file round-trips; Resolve turns them into typed values.
type Options struct {
	Target      string `toml:"target" json:"target"`
	Title       string `toml:"title" json:"title"`
	ButtonText  string `toml:"button_text" json:"button_text"`
	Accent      string `toml:"accent,omitempty" json:"accent,omitempty"`
	FormatAbove string `toml:"format_above" json:"format_above"`
	Message     string `toml:"message,omitempty" json:"message,omitempty"`
	Link        string `toml:"link,omitempty" json:"link,omitempty"`
}

type DisplayConfig struct {
	CellWidthPx int  `toml:"cell_width_px"`
	NoColor     bool `toml:"no_color"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

type Config struct {
	Countdown Options       `toml:"countdown"`
	Display   DisplayConfig `toml:"display"`
	Log       LogConfig     `toml:"log"`
	DBPath    string        `toml:"db_path,omitempty"`
}

const (
	DefaultTarget     = "2025-11-07T00:00:00"
	DefaultTitle      = "Countdown"
	DefaultButtonText = "Take me there"
)

func DefaultOptions() Options {
	return Options{
		Target:      DefaultTarget,
		Title:       DefaultTitle,
		ButtonText:  DefaultButtonText,
		FormatAbove: string(layout.MD),
	}
}

func DefaultConfig() Config {
	return Config{
		Countdown: DefaultOptions(),
		Display:   DisplayConfig{CellWidthPx: layout.DefaultCellWidth},
		Log:       LogConfig{Level: "warn"},
	}
}

// Load reads path (ConfigFile when empty). A missing file yields the defaults;
// a malformed file is an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigFile()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnvOverrides(cfg), nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Display.CellWidthPx <= 0 {
		cfg.Display.CellWidthPx = layout.DefaultCellWidth
	}
	return applyEnvOverrides(cfg), nil
}

func applyEnvOverrides(cfg Config) Config {
	if v := os.Getenv("TMINUS_TARGET"); v != "" {
		cfg.Countdown.Target = v
	}
	if v := os.Getenv("TMINUS_FORMAT_ABOVE"); v != "" {
		cfg.Countdown.FormatAbove = v
	}
	if v := os.Getenv("TMINUS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TMINUS_DB"); v != "" {
		cfg.DBPath = v
	}
	return cfg
}

// Save writes cfg as TOML, creating the parent directory.
func Save(path string, cfg Config) error {
	if path == "" {
		path = ConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// ResolvedDBPath returns DBPath or the default location.
func (c Config) ResolvedDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return DBFile()
}

// Countdown is a validated, typed set of Options.
type Countdown struct {
	Target     time.Time
	Title      string
	ButtonText string
	Accent     string
	Threshold  layout.Threshold
	Message    string
	Link       string
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTarget accepts RFC3339 or a local date/time without a zone.
func ParseTarget(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, l := range localLayouts {
		if t, err := time.ParseInLocation(l, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid target %q: want RFC3339 or YYYY-MM-DD[THH:MM[:SS]]", s)
}

// Resolve validates the options. Empty fields fall back to the defaults.
func (o Options) Resolve() (Countdown, error) {
	o = o.withDefaults()

	target, err := ParseTarget(o.Target)
	if err != nil {
		return Countdown{}, err
	}
	th, err := layout.ParseThreshold(o.FormatAbove)
	if err != nil {
		return Countdown{}, fmt.Errorf("format_above: %w", err)
	}
	if o.Accent != "" && !validColor(o.Accent) {
		return Countdown{}, fmt.Errorf("accent %q: want #RGB, #RRGGBB or an ANSI color number", o.Accent)
	}

	return Countdown{
		Target:     target,
		Title:      o.Title,
		ButtonText: o.ButtonText,
		Accent:     o.Accent,
		Threshold:  th,
		Message:    o.Message,
		Link:       o.Link,
	}, nil
}

// Merge returns o with every non-empty field of other applied on top.
func (o Options) Merge(other Options) Options {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&o.Target, other.Target)
	set(&o.Title, other.Title)
	set(&o.ButtonText, other.ButtonText)
	set(&o.Accent, other.Accent)
	set(&o.FormatAbove, other.FormatAbove)
	set(&o.Message, other.Message)
	set(&o.Link, other.Link)
	return o
}

func (o Options) withDefaults() Options {
	return DefaultOptions().Merge(o)
}

func validColor(s string) bool {
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return false
		}
		for _, r := range hex {
			if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
				return false
			}
		}
		return true
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
