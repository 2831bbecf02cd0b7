package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working and config dirs.
const FileName = "wireorb.yaml"

// Overrides are command-line settings applied on top of the file. Zero
// values leave the file or default value alone.
type Overrides struct {
	ConfigPath string
	Debug      bool
	Dark       *bool
	FPS        int
	Width      int
	Height     int
	LogFile    string
}

// Load loads configuration with priority: defaults < file < flags.
func Load(ov Overrides) (*Config, error) {
	cfg := Default()

	configPath := ov.ConfigPath
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyOverrides(cfg, ov)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		filepath.Join(".", FileName),
		filepath.Join(ConfigDir(), FileName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "wireorb")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "wireorb")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "wireorb")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "wireorb")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyOverrides applies CLI flag overrides to the config.
func applyOverrides(cfg *Config, ov Overrides) {
	if ov.Debug {
		cfg.Logging.Level = "debug"
	}
	if ov.Dark != nil {
		cfg.Theme.Dark = *ov.Dark
	}
	if ov.FPS > 0 {
		cfg.Display.FPS = ov.FPS
	}
	if ov.Width > 0 {
		cfg.Display.Width = ov.Width
	}
	if ov.Height > 0 {
		cfg.Display.Height = ov.Height
	}
	if ov.LogFile != "" {
		cfg.Logging.LogFile = ov.LogFile
	}
}
