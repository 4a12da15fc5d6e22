// Package config handles loading and saving wb configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/wb/config.yaml
//   - Data:    ~/.local/share/wb/ (default export directory)
//   - State:   ~/.local/state/wb/ (debug log)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/widgetboard/pkg/dashboard"
	"github.com/vanderheijden86/widgetboard/pkg/model"

	"gopkg.in/yaml.v3"
)

// UIConfig holds UI preference settings.
type UIConfig struct {
	CardWidth        int    `yaml:"card_width,omitempty"`         // Width of one card cell in columns (default 34)
	DefaultChartType string `yaml:"default_chart_type,omitempty"` // pie or bar, preselected in new drafts
	SidebarWidth     int    `yaml:"sidebar_width,omitempty"`      // Sidebar width in columns (default 44)
}

// ExportConfig controls report export.
type ExportConfig struct {
	Dir     string   `yaml:"dir,omitempty"`     // Output directory; defaults to DataDir()/exports
	Title   string   `yaml:"title,omitempty"`   // Report title
	Formats []string `yaml:"formats,omitempty"` // Any of markdown, json, sqlite, svg, png
}

// SeedCategory is a list of cards preloaded into one category at startup.
type SeedCategory struct {
	Category model.CategoryID `yaml:"category"`
	Cards    []model.Card     `yaml:"cards"`
}

// Config is the top-level configuration for wb.
type Config struct {
	Categories []model.CategoryID `yaml:"categories,omitempty"` // Fixed for the whole session
	UI         UIConfig           `yaml:"ui,omitempty"`
	Export     ExportConfig       `yaml:"export,omitempty"`
	Seed       []SeedCategory     `yaml:"seed,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Categories: model.DefaultCategories(),
		UI: UIConfig{
			CardWidth:        34,
			DefaultChartType: string(model.DefaultChartType),
			SidebarWidth:     44,
		},
		Export: ExportConfig{
			Title:   "Dashboard",
			Formats: []string{"markdown", "json", "sqlite", "svg"},
		},
	}
}

// ConfigDir returns the XDG config directory for wb.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory for wb.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateDir returns the XDG state directory for wb.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, "wb")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, "wb")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize fills zero values left by a partial file.
func (c *Config) normalize() {
	def := DefaultConfig()
	if len(c.Categories) == 0 {
		c.Categories = def.Categories
	}
	if c.UI.CardWidth <= 0 {
		c.UI.CardWidth = def.UI.CardWidth
	}
	if c.UI.SidebarWidth <= 0 {
		c.UI.SidebarWidth = def.UI.SidebarWidth
	}
	if _, err := model.ParseChartType(c.UI.DefaultChartType); err != nil {
		c.UI.DefaultChartType = def.UI.DefaultChartType
	}
	if len(c.Export.Formats) == 0 {
		c.Export.Formats = def.Export.Formats
	}
	c.Export.Dir = expandHome(c.Export.Dir)
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ExportDir returns the configured export directory, falling back to
// DataDir()/exports.
func (c Config) ExportDir() string {
	if c.Export.Dir != "" {
		return c.Export.Dir
	}
	if dir := DataDir(); dir != "" {
		return filepath.Join(dir, "exports")
	}
	return "exports"
}

// ChartType returns the configured default chart type.
func (c Config) ChartType() model.ChartType {
	t, err := model.ParseChartType(c.UI.DefaultChartType)
	if err != nil {
		return model.DefaultChartType
	}
	return t
}

// LoadSeed reads a seed file: a YAML list of categories with their cards.
func LoadSeed(path string) ([]SeedCategory, error) {
	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		return nil, fmt.Errorf("reading seed: %w", err)
	}
	var seed []SeedCategory
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	return seed, nil
}

// NewDashboard builds the initial dashboard from the configured categories
// and seeds. Inline seeds come first, then extra in order. Seeds naming an
// unknown category are skipped.
func (c Config) NewDashboard(extra ...SeedCategory) dashboard.State {
	state := dashboard.New(c.Categories...)
	seeds := append(append([]SeedCategory(nil), c.Seed...), extra...)
	for _, sc := range seeds {
		for _, card := range sc.Cards {
			state = state.Seed(sc.Category, card)
		}
	}
	return state
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
