package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for ibex. Every field can be
// overridden by the corresponding CLI flag; the file just sets defaults.
type Config struct {
	BackupRoot     string `toml:"backup_root"` // overrides the platform search root
	OutputDir      string `toml:"output_dir"`
	LogDir         string `toml:"log_dir"`
	Layout         string `toml:"layout"`         // "flat", "ym" or "ymd"
	PrependDate    bool   `toml:"prepend_date"`
	DateSeparator  string `toml:"date_separator"` // "dash", "underscore" or "none"
	IncludeTrashed bool   `toml:"include_trashed"`
	ExifFallback   bool   `toml:"exif_fallback"`
}

// NewConfig creates a Config with the default extraction options.
func NewConfig(logDir string) *Config {
	return &Config{
		LogDir:        logDir,
		Layout:        "ym",
		DateSeparator: "dash",
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault reads the config file if it exists; a missing file yields
// the defaults, since the whole surface is also reachable through flags.
func LoadOrDefault(path string, logDir string) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewConfig(logDir), nil
		}
		return nil, err
	}
	if cfg.LogDir == "" {
		cfg.LogDir = logDir
	}
	if cfg.Layout == "" {
		cfg.Layout = "ym"
	}
	if cfg.DateSeparator == "" {
		cfg.DateSeparator = "dash"
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
