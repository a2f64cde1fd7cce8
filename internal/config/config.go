// Package config handles loading, watching and saving subkana settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/f3rmion/subkana/internal/subkana"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Theme selects the panel color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DefaultSelectors are the YouTube caption selectors, tried in order.
var DefaultSelectors = []string{
	".ytp-caption-segment",
	".caption-segment",
	`[data-layer="caption"] span`,
	".ytp-caption-segment-line",
	".ytp-caption-window-bottom span",
	".ytp-caption-window .ytp-caption-segment",
}

// DefaultContainers are the wrappers a caption element must sit inside.
var DefaultContainers = []string{
	".ytp-caption-window-container",
	".ytp-caption-window",
	`[data-layer="caption"]`,
}

// Settings is the user configuration consumed by the annotation pipeline.
type Settings struct {
	APIBaseURL    string          `mapstructure:"api_url" yaml:"api_url"`
	AutoAnalyze   bool            `mapstructure:"auto_analyze" yaml:"auto_analyze"`
	EnabledLevels []subkana.Level `mapstructure:"level_filters" yaml:"level_filters"`
	Theme         Theme           `mapstructure:"theme" yaml:"theme"`
	Selectors     []string        `mapstructure:"selectors" yaml:"selectors"`   // Caption element selectors
	Containers    []string        `mapstructure:"containers" yaml:"containers"` // Caption container selectors
	Timeout       time.Duration   `mapstructure:"timeout" yaml:"timeout"`       // Analysis request timeout
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		APIBaseURL:    "http://localhost:8000/api/v1",
		AutoAnalyze:   true,
		EnabledLevels: append([]subkana.Level(nil), subkana.AllLevels...),
		Theme:         ThemeDark,
		Selectors:     append([]string(nil), DefaultSelectors...),
		Containers:    append([]string(nil), DefaultContainers...),
		Timeout:       10 * time.Second,
	}
}

// LevelEnabled reports whether patterns and tokens of level l should be shown.
func (s Settings) LevelEnabled(l subkana.Level) bool {
	for _, lv := range s.EnabledLevels {
		if lv == l {
			return true
		}
	}
	return false
}

// Validate checks the settings for values the pipeline cannot work with.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.APIBaseURL) == "" {
		return errors.New("api_url must not be empty")
	}
	for _, l := range s.EnabledLevels {
		if !l.Valid() {
			return fmt.Errorf("level_filters: unknown level %q", l)
		}
	}
	if s.Theme != ThemeDark && s.Theme != ThemeLight {
		return fmt.Errorf("theme must be %q or %q, got %q", ThemeDark, ThemeLight, s.Theme)
	}
	if len(s.Selectors) == 0 {
		return errors.New("selectors must not be empty")
	}
	return nil
}

// clone returns a deep copy so snapshots never share slices.
func (s Settings) clone() Settings {
	s.EnabledLevels = append([]subkana.Level(nil), s.EnabledLevels...)
	s.Selectors = append([]string(nil), s.Selectors...)
	s.Containers = append([]string(nil), s.Containers...)
	return s
}

// Store holds the current settings snapshot. Only the external update path
// writes to it; everything else reads.
type Store struct {
	mu       sync.RWMutex
	current  Settings
	nextID   int
	watchers map[int]func(Settings)
}

// NewStore creates a store holding s.
func NewStore(s Settings) *Store {
	return &Store{
		current:  s.clone(),
		watchers: make(map[int]func(Settings)),
	}
}

// Settings returns a copy of the current snapshot.
func (st *Store) Settings() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current.clone()
}

// Update replaces the snapshot and notifies subscribers in subscription order.
func (st *Store) Update(s Settings) {
	st.mu.Lock()
	st.current = s.clone()
	fns := make([]func(Settings), 0, len(st.watchers))
	for i := 0; i < st.nextID; i++ {
		if fn, ok := st.watchers[i]; ok {
			fns = append(fns, fn)
		}
	}
	st.mu.Unlock()

	for _, fn := range fns {
		fn(s.clone())
	}
}

// Subscribe registers fn for update notifications. The returned func removes it.
func (st *Store) Subscribe(fn func(Settings)) func() {
	st.mu.Lock()
	defer st.mu.Unlock()
	id := st.nextID
	st.nextID++
	st.watchers[id] = fn
	return func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		delete(st.watchers, id)
	}
}

// newViper returns a viper instance with defaults and env overrides set up.
func newViper(path string) *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("api_url", d.APIBaseURL)
	v.SetDefault("auto_analyze", d.AutoAnalyze)
	v.SetDefault("level_filters", d.EnabledLevels)
	v.SetDefault("theme", string(d.Theme))
	v.SetDefault("selectors", d.Selectors)
	v.SetDefault("containers", d.Containers)
	v.SetDefault("timeout", d.Timeout)

	v.SetEnvPrefix("SUBKANA")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	}
	return v
}

func decode(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// Load reads settings from the YAML file at path, falling back to defaults
// when the file does not exist. SUBKANA_* environment variables override
// file values.
func Load(path string) (Settings, error) {
	v := newViper(path)
	if path != "" {
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("reading settings file: %w", err)
			}
		}
	}
	return decode(v)
}

// Save writes settings to a YAML file, creating parent directories.
func Save(path string, s Settings) error {
	out, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}

	return nil
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "subkana"), nil
}

// DefaultPath returns the default settings file location.
func DefaultPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.yaml"), nil
}
