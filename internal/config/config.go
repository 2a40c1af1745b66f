package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Not-found modes for detail routes whose id is not in the catalog.
const (
	NotFoundHome    = "home"
	NotFoundMessage = "message"
)

// Log levels.
const (
	LogOff     = "off"
	LogNormal  = "normal"
	LogVerbose = "verbose"
)

const (
	defaultCatalog    = "builtin"
	defaultColumns    = 4
	defaultDebounceMS = 250
	defaultRPS        = 5.0
	defaultDownloads  = 2
)

func homeDirOrFallback() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return home
}

// Config holds all user-configurable settings.
type Config struct {
	// Catalog selects the recipe source: "builtin", a .yaml/.yml/.json file,
	// an http(s) feed URL, "db", or "sqlite:<path>".
	Catalog string `toml:"catalog"`
	// Columns is the grid width. Zero picks a width from the terminal size.
	Columns int `toml:"columns"`
	// DebounceMS is how long search input must be idle before it is applied.
	DebounceMS int `toml:"debounce_ms"`
	// NotFound controls how an unknown recipe id renders: "home" or "message".
	NotFound string `toml:"not_found"`
	// DownloadDir is where recipe images are saved.
	DownloadDir string `toml:"download_dir"`
	// RequestsPerSecond rate-limits HTTP requests to catalog feeds.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	// MaxConcurrentDownloads is how many images to save in parallel.
	MaxConcurrentDownloads int `toml:"max_concurrent_downloads"`
	// LogLevel is "off", "normal" or "verbose".
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Catalog:                defaultCatalog,
		Columns:                defaultColumns,
		DebounceMS:             defaultDebounceMS,
		NotFound:               NotFoundHome,
		DownloadDir:            filepath.Join(homeDirOrFallback(), "Downloads", "recipe-explorer"),
		RequestsPerSecond:      defaultRPS,
		MaxConcurrentDownloads: defaultDownloads,
		LogLevel:               LogNormal,
	}
}

// ConfigDir returns the directory where config and data files are stored.
func ConfigDir() string {
	if dir := os.Getenv("RECIPE_EXPLORER_CONFIG_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(homeDirOrFallback(), ".config", "recipe-explorer")
}

// DBPath returns the path to the SQLite catalog store.
func DBPath() string {
	return filepath.Join(ConfigDir(), "recipes.db")
}

// LogPath returns the file the interactive UI logs to.
func LogPath() string {
	return filepath.Join(ConfigDir(), "recipe-explorer.log")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads config from path, or from ConfigPath when path is empty. A
// missing default config file is created with defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = ConfigPath()
	}
	path = expandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return nil, fmt.Errorf("open config: %w", err)
			}
			if err := cfg.SaveTo(path); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Validate()
	return cfg, nil
}

// Validate replaces empty or out-of-range values with defaults.
func (c *Config) Validate() {
	def := DefaultConfig()

	c.Catalog = strings.TrimSpace(c.Catalog)
	if c.Catalog == "" {
		c.Catalog = def.Catalog
	}
	if c.Columns < 0 {
		c.Columns = def.Columns
	}
	if c.DebounceMS <= 0 {
		c.DebounceMS = def.DebounceMS
	}
	switch strings.ToLower(strings.TrimSpace(c.NotFound)) {
	case NotFoundMessage:
		c.NotFound = NotFoundMessage
	default:
		c.NotFound = NotFoundHome
	}
	c.DownloadDir = strings.TrimSpace(c.DownloadDir)
	if c.DownloadDir == "" {
		c.DownloadDir = def.DownloadDir
	}
	c.DownloadDir = expandPath(c.DownloadDir)
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = def.RequestsPerSecond
	}
	if c.MaxConcurrentDownloads < 1 {
		c.MaxConcurrentDownloads = def.MaxConcurrentDownloads
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case LogOff:
		c.LogLevel = LogOff
	case LogVerbose:
		c.LogLevel = LogVerbose
	default:
		c.LogLevel = LogNormal
	}
}

// Save writes the config to the default location.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the config as TOML to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func expandPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return trimmed
		}
		return filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return trimmed
}
