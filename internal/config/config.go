package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultWidgetRefresh = "@every 1m"
	DefaultThemeAccent   = "#007AFF"
)

type Config struct {
	Data   DataConfig   `json:"data"`
	Widget WidgetConfig `json:"widget"`
	UI     UIConfig     `json:"ui"`
}

type DataConfig struct {
	DBPath      string `json:"dbPath"`
	SnapshotDir string `json:"snapshotDir"`
}

type WidgetConfig struct {
	RefreshSpec string `json:"refreshSpec"`
}

// UIConfig carries the presentation settings the surfaces read; the core
// never consults them.
type UIConfig struct {
	MinimalMode bool   `json:"minimalMode"`
	ThemeAccent string `json:"themeAccent"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Data: DataConfig{
			DBPath:      filepath.Join(home, ".puredo", "tasks.db"),
			SnapshotDir: filepath.Join(home, ".puredo", "shared"),
		},
		Widget: WidgetConfig{
			RefreshSpec: DefaultWidgetRefresh,
		},
		UI: UIConfig{
			ThemeAccent: DefaultThemeAccent,
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".puredo")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if path := os.Getenv("PUREDO_DB_PATH"); path != "" {
		cfg.Data.DBPath = path
	}
	if dir := os.Getenv("PUREDO_SNAPSHOT_DIR"); dir != "" {
		cfg.Data.SnapshotDir = dir
	}
	if spec := os.Getenv("PUREDO_WIDGET_REFRESH"); spec != "" {
		cfg.Widget.RefreshSpec = spec
	}
	if minimal := os.Getenv("PUREDO_MINIMAL"); minimal != "" {
		if parsed, err := strconv.ParseBool(minimal); err == nil {
			cfg.UI.MinimalMode = parsed
		}
	}

	if cfg.Data.DBPath == "" {
		cfg.Data.DBPath = DefaultConfig().Data.DBPath
	}
	if cfg.Data.SnapshotDir == "" {
		cfg.Data.SnapshotDir = DefaultConfig().Data.SnapshotDir
	}
	if cfg.Widget.RefreshSpec == "" {
		cfg.Widget.RefreshSpec = DefaultWidgetRefresh
	}
	if cfg.UI.ThemeAccent == "" {
		cfg.UI.ThemeAccent = DefaultThemeAccent
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
