// Package config loads the generator's TOML configuration with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/jsyiek/mtg-card-generator/internal/card"
)

// DirName is the configuration directory under the user's home.
const DirName = ".mtg-card-generator"

// Config represents the application configuration.
type Config struct {
	// Chunk model configuration
	Model ModelConfig `toml:"model"`

	// Card catalog configuration
	Catalog CatalogConfig `toml:"catalog"`

	// Card cache configuration
	Cache CacheConfig `toml:"cache"`

	// Tracing configuration
	Tracing TracingConfig `toml:"tracing"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// ModelConfig contains chunk model and generation settings.
type ModelConfig struct {
	ChunkSize    int      `toml:"chunk_size" env:"MTGGEN_CHUNK_SIZE"`         // Tokens per chunk
	MaxWalkSteps int      `toml:"max_walk_steps" env:"MTGGEN_MAX_WALK_STEPS"` // 0 = unbounded
	Seed         uint64   `toml:"seed" env:"MTGGEN_SEED"`                     // 0 = time-based
	// CardTypes are the categories stats reports on without -c. generate and
	// chart default to Creature instead.
	CardTypes []string `toml:"card_types" env:"MTGGEN_CARD_TYPES" envSeparator:","`
}

// CatalogConfig contains card catalog settings.
type CatalogConfig struct {
	BaseURL         string `toml:"base_url" env:"MTGGEN_CATALOG_URL"`
	Query           string `toml:"query" env:"MTGGEN_CATALOG_QUERY"`          // Search query for the corpus
	RequestInterval string `toml:"request_interval" env:"MTGGEN_CATALOG_RATE"` // e.g. "100ms"
	Timeout         string `toml:"timeout" env:"MTGGEN_CATALOG_TIMEOUT"`
	MaxRetries      int    `toml:"max_retries" env:"MTGGEN_CATALOG_RETRIES"`
}

// CacheConfig contains card cache settings.
type CacheConfig struct {
	DBPath string `toml:"db_path" env:"MTGGEN_DB_PATH"`
	TTL    string `toml:"ttl" env:"MTGGEN_CACHE_TTL"` // e.g. "720h"
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	OTLPEndpoint string  `toml:"otlp_endpoint" env:"MTGGEN_OTLP_ENDPOINT"` // Empty disables tracing
	SampleRate   float64 `toml:"sample_rate" env:"MTGGEN_SAMPLE_RATE"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode" env:"MTGGEN_DEBUG"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	types := make([]string, len(card.Categories))
	for i, c := range card.Categories {
		types[i] = string(c)
	}

	dbPath := "cards.db"
	if dir, err := Dir(); err == nil {
		dbPath = filepath.Join(dir, "cards.db")
	}

	return &Config{
		Model: ModelConfig{
			ChunkSize:    3,
			MaxWalkSteps: 10000,
			Seed:         0,
			CardTypes:    types,
		},
		Catalog: CatalogConfig{
			BaseURL:         "https://api.scryfall.com",
			Query:           "game:paper",
			RequestInterval: "100ms",
			Timeout:         "30s",
			MaxRetries:      3,
		},
		Cache: CacheConfig{
			DBPath: dbPath,
			TTL:    "720h",
		},
		Tracing: TracingConfig{
			OTLPEndpoint: "",
			SampleRate:   1.0,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName), nil
}

// Path returns the path to the configuration file, creating its directory.
func Path() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads a .env file from the working directory if present, then the
// configuration file from the default path.
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadDotEnv loads .env from the working directory into the environment if it
// exists. Variables already set are kept.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadFrom loads the configuration file at path over the defaults and applies
// environment overrides. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo saves the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Model.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be positive: %d", c.Model.ChunkSize)
	}

	if c.Model.MaxWalkSteps < 0 {
		return fmt.Errorf("max walk steps cannot be negative: %d", c.Model.MaxWalkSteps)
	}

	if _, err := c.CardCategories(); err != nil {
		return err
	}

	if _, err := time.ParseDuration(c.Catalog.RequestInterval); err != nil {
		return fmt.Errorf("invalid request interval %q: %w", c.Catalog.RequestInterval, err)
	}

	if _, err := time.ParseDuration(c.Catalog.Timeout); err != nil {
		return fmt.Errorf("invalid catalog timeout %q: %w", c.Catalog.Timeout, err)
	}

	if c.Catalog.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative: %d", c.Catalog.MaxRetries)
	}

	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("sample rate must be between 0 and 1: %v", c.Tracing.SampleRate)
	}

	return nil
}

// CardCategories parses the configured card types.
func (c *Config) CardCategories() ([]card.Category, error) {
	cats := make([]card.Category, 0, len(c.Model.CardTypes))
	for _, name := range c.Model.CardTypes {
		cat, ok := card.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown card type %q", name)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// GetRequestInterval returns the catalog request interval as a duration.
func (c *Config) GetRequestInterval() (time.Duration, error) {
	return time.ParseDuration(c.Catalog.RequestInterval)
}

// GetCatalogTimeout returns the catalog HTTP timeout as a duration.
func (c *Config) GetCatalogTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Catalog.Timeout)
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}
