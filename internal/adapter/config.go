package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	Review  ReviewConfig  `mapstructure:"review"`
	Player  PlayerConfig  `mapstructure:"player"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LibraryConfig holds media library configuration
type LibraryConfig struct {
	Paths    []string `mapstructure:"paths"`     // Directories scanned for media
	TrashDir string   `mapstructure:"trash_dir"` // Flushed files are moved here instead of removed
	FFmpeg   string   `mapstructure:"ffmpeg"`    // Binary used for video frames, empty to disable
}

// ReviewConfig holds review queue configuration
type ReviewConfig struct {
	PreloadCount int    `mapstructure:"preload_count"`
	PreviewWidth int    `mapstructure:"preview_width"` // Cells
	FinalWidth   int    `mapstructure:"final_width"`   // Cells
	DefaultKind  string `mapstructure:"default_kind"`  // "photo" or "video"
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// StorageConfig holds seen-set storage configuration
type StorageConfig struct {
	Path string `mapstructure:"path"` // bbolt file, empty for memory-only
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // e.g. "127.0.0.1:9321", empty disables
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			Paths:  []string{defaultLibraryPath()},
			FFmpeg: "ffmpeg",
		},
		Review: ReviewConfig{
			PreloadCount: 5,
			PreviewWidth: 40,
			FinalWidth:   80,
			DefaultKind:  "photo",
		},
		Player: PlayerConfig{
			Command: "",
			Args:    []string{},
		},
		Storage: StorageConfig{
			Path: filepath.Join(defaultDataPath(), "culler.db"),
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "culler.log"),
			Level: "INFO",
		},
	}
}

// SetDefaults registers every default with v so that env and flag overrides
// resolve against known keys.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("library.paths", d.Library.Paths)
	v.SetDefault("library.trash_dir", d.Library.TrashDir)
	v.SetDefault("library.ffmpeg", d.Library.FFmpeg)
	v.SetDefault("review.preload_count", d.Review.PreloadCount)
	v.SetDefault("review.preview_width", d.Review.PreviewWidth)
	v.SetDefault("review.final_width", d.Review.FinalWidth)
	v.SetDefault("review.default_kind", d.Review.DefaultKind)
	v.SetDefault("player.command", d.Player.Command)
	v.SetDefault("player.args", d.Player.Args)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

// defaultLibraryPath returns the platform pictures directory
func defaultLibraryPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Pictures")
}

// defaultDataPath returns the directory for the database and log file
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "culler")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "culler")
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "culler")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "culler")
	}
}

// LoadConfig loads configuration from file, environment and any flags
// already bound to v. An explicit file path takes precedence over the
// search path.
func LoadConfig(v *viper.Viper, file string) (*Config, error) {
	cfg := DefaultConfig()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides, e.g. CULLER_REVIEW_PRELOAD_COUNT
	v.SetEnvPrefix("CULLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with
func (c *Config) Validate() error {
	if len(c.Library.Paths) == 0 {
		return fmt.Errorf("library.paths must list at least one directory")
	}
	if c.Review.PreloadCount < 1 {
		return fmt.Errorf("review.preload_count must be at least 1, got %d", c.Review.PreloadCount)
	}
	if c.Review.PreviewWidth < 1 || c.Review.FinalWidth < 1 {
		return fmt.Errorf("review widths must be positive")
	}
	return nil
}

// SaveConfig writes cfg to path (the default config file when empty)
func SaveConfig(cfg *Config, path string) (string, error) {
	if path == "" {
		path = filepath.Join(DefaultConfigPath(), "config.yaml")
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v := viper.New()
	v.Set("library.paths", cfg.Library.Paths)
	v.Set("library.trash_dir", cfg.Library.TrashDir)
	v.Set("library.ffmpeg", cfg.Library.FFmpeg)

	v.Set("review.preload_count", cfg.Review.PreloadCount)
	v.Set("review.preview_width", cfg.Review.PreviewWidth)
	v.Set("review.final_width", cfg.Review.FinalWidth)
	v.Set("review.default_kind", cfg.Review.DefaultKind)

	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)

	v.Set("storage.path", cfg.Storage.Path)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	v.Set("metrics.addr", cfg.Metrics.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
