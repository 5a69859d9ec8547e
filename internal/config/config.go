package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Drive   DriveConfig   `mapstructure:"drive"`
	Triage  TriageConfig  `mapstructure:"triage"`
	Export  ExportConfig  `mapstructure:"export"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DriveConfig holds remote drive configuration
type DriveConfig struct {
	BaseURL       string `mapstructure:"base_url"`        // Empty = public Graph endpoint
	Token         string `mapstructure:"token"`           // Graph access token
	URLTTLMinutes int    `mapstructure:"url_ttl_minutes"` // Download-url cache freshness window
}

// TriageConfig holds triage view configuration
type TriageConfig struct {
	PageSize      int  `mapstructure:"page_size"`      // Items per listing page
	HideProcessed bool `mapstructure:"hide_processed"` // Default hide-processed toggle for new folders
}

// ExportConfig holds bulk-export configuration
type ExportConfig struct {
	ChunkSize   int    `mapstructure:"chunk_size"`  // Items per archive
	Concurrency int    `mapstructure:"concurrency"` // Workers per chunk
	OutputDir   string `mapstructure:"output_dir"`  // Where archives are written
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Drive: DriveConfig{
			URLTTLMinutes: 15,
		},
		Triage: TriageConfig{
			PageSize: 25,
		},
		Export: ExportConfig{
			ChunkSize:   100,
			Concurrency: 4,
			OutputDir:   defaultExportDir(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "sift", "sift.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "sift", "sift.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "sift")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "sift")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "sift", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "sift", "cache")
	}
}

func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("SIFT")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("drive.base_url", cfg.Drive.BaseURL)
	viper.Set("drive.token", cfg.Drive.Token)
	viper.Set("drive.url_ttl_minutes", cfg.Drive.URLTTLMinutes)

	viper.Set("triage.page_size", cfg.Triage.PageSize)
	viper.Set("triage.hide_processed", cfg.Triage.HideProcessed)

	viper.Set("export.chunk_size", cfg.Export.ChunkSize)
	viper.Set("export.concurrency", cfg.Export.Concurrency)
	viper.Set("export.output_dir", cfg.Export.OutputDir)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if a drive token is set
func (c *Config) IsConfigured() bool {
	return c.Drive.Token != ""
}

// GetCachePath returns the cache directory path
func GetCachePath() string {
	return defaultCachePath()
}

// ClearCache removes all cached data
func ClearCache() error {
	cachePath := defaultCachePath()
	if err := os.RemoveAll(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
