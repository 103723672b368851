package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/iishyfishyy/recall/internal/embeddings"
	"github.com/iishyfishyy/recall/internal/router"
	"github.com/iishyfishyy/recall/internal/vectorstore"
)

const (
	ConfigDirName  = ".recall"
	ConfigFileName = "config.yaml"
	RecordsDBName  = "records.db"
)

// Config represents the application configuration
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Router    RouterConfig    `yaml:"router"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// EmbeddingConfig selects and sizes the embedder
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
}

// CacheConfig controls hit/miss decisions
type CacheConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// RouterConfig controls model selection on a miss
type RouterConfig struct {
	Cutoff        int    `yaml:"cutoff"`
	CheapModel    string `yaml:"cheap_model"`
	AdvancedModel string `yaml:"advanced_model"`
}

// StorageConfig controls the record journal
type StorageConfig struct {
	Persist bool `yaml:"persist"`
	// Path defaults to ~/.recall/records.db
	Path string `yaml:"path,omitempty"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls logging
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   embeddings.ProviderHash,
			Dimensions: embeddings.DefaultDimensions,
			CacheSize:  1024,
		},
		Cache: CacheConfig{
			Threshold: vectorstore.DefaultThreshold,
		},
		Router: RouterConfig{
			Cutoff:        router.DefaultCutoff,
			CheapModel:    router.DefaultCheapModel,
			AdvancedModel: router.DefaultAdvancedModel,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.CacheSize < 0 {
		return fmt.Errorf("embedding.cache_size must not be negative, got %d", c.Embedding.CacheSize)
	}
	if math.IsNaN(c.Cache.Threshold) || c.Cache.Threshold < -1 || c.Cache.Threshold > 1 {
		return fmt.Errorf("cache.threshold must be within [-1, 1], got %v", c.Cache.Threshold)
	}
	if c.Router.Cutoff < 0 {
		return fmt.Errorf("router.cutoff must not be negative, got %d", c.Router.Cutoff)
	}
	if c.Router.CheapModel == "" || c.Router.AdvancedModel == "" {
		return fmt.Errorf("router.cheap_model and router.advanced_model are required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// RecordsPath returns the journal location, resolving the default
func (c *Config) RecordsPath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, RecordsDBName), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// Load reads the configuration from the default location
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the configuration at path. A missing file yields the
// defaults; keys absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to the default location
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, configPath)
}

// SaveTo writes the configuration to path, creating its directory
func SaveTo(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists checks if a configuration file exists
func Exists() (bool, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
