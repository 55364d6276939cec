package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/UnitVectorY-Labs/shoppinglist/internal/model"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort     = 3030
	DefaultLogLevel = "info"

	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Shopping ShoppingConfig `yaml:"shopping"`
}

type ServerConfig struct {
	Port     int           `yaml:"port"`
	LogLevel string        `yaml:"logLevel"`
	OpenAPI  OpenAPIConfig `yaml:"openapi"`
}

type OpenAPIConfig struct {
	Enabled bool `yaml:"enabled"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
}

type ShoppingConfig struct {
	DefaultPageSize int    `yaml:"defaultPageSize"`
	MaxPageSize     int    `yaml:"maxPageSize"`
	UpsertMode      string `yaml:"upsertMode"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			OpenAPI: OpenAPIConfig{Enabled: true},
		},
	}
	// Validate only fills defaults here and cannot fail on the zero values.
	_ = Validate(cfg)
	return cfg
}

// Load reads and parses a YAML configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for correctness and fills in defaults.
func Validate(cfg *Config) error {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server: port %d is out of range", cfg.Server.Port)
	}

	cfg.Server.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Server.LogLevel))
	switch cfg.Server.LogLevel {
	case "":
		cfg.Server.LogLevel = DefaultLogLevel
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("server: unknown logLevel %q", cfg.Server.LogLevel)
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	switch cfg.Store.Driver {
	case "":
		cfg.Store.Driver = DriverMemory
	case DriverMemory, DriverPostgres:
	default:
		return fmt.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}

	if cfg.Shopping.DefaultPageSize < 0 {
		return fmt.Errorf("shopping: defaultPageSize must not be negative")
	}
	if cfg.Shopping.DefaultPageSize == 0 {
		cfg.Shopping.DefaultPageSize = model.DefaultPageSize
	}
	if cfg.Shopping.MaxPageSize < 0 {
		return fmt.Errorf("shopping: maxPageSize must not be negative")
	}
	if cfg.Shopping.MaxPageSize > 0 && cfg.Shopping.DefaultPageSize > cfg.Shopping.MaxPageSize {
		return fmt.Errorf("shopping: defaultPageSize %d exceeds maxPageSize %d", cfg.Shopping.DefaultPageSize, cfg.Shopping.MaxPageSize)
	}

	mode, err := model.ParseUpsertMode(cfg.Shopping.UpsertMode)
	if err != nil {
		return fmt.Errorf("shopping: %w", err)
	}
	cfg.Shopping.UpsertMode = string(mode)

	return nil
}
