package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	BackendMemory   = "memory"
	BackendDatabase = "database"
)

// Config represents the application configuration loaded from a TOML file.
//
// Every field can be overridden by the PODSHELF_* environment variable named in its env tag.
type Config struct {
	Repository RepositoryConfig `toml:"repository"`
	Data       DataConfig       `toml:"data"`
	Database   DatabaseConfig   `toml:"database"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// RepositoryConfig selects the storage backend.
type RepositoryConfig struct {
	Backend string `toml:"backend" env:"PODSHELF_REPOSITORY"`
}

// DataConfig points at the CSV files used to populate the catalogue.
type DataConfig struct {
	PodcastsPath string `toml:"podcasts_path" env:"PODSHELF_PODCASTS_PATH"`
	EpisodesPath string `toml:"episodes_path" env:"PODSHELF_EPISODES_PATH"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"PODSHELF_DATABASE_PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"PODSHELF_DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"PODSHELF_DATABASE_MAX_IDLE_CONNS"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host          string  `toml:"host" env:"PODSHELF_HOST"`
	Port          int     `toml:"port" env:"PODSHELF_PORT"`
	SessionSecret string  `toml:"session_secret" env:"PODSHELF_SESSION_SECRET"`
	LoginRate     float64 `toml:"login_rate" env:"PODSHELF_LOGIN_RATE"`
	LoginBurst    int     `toml:"login_burst" env:"PODSHELF_LOGIN_BURST"`
}

// LogConfig sets the minimum log level.
type LogConfig struct {
	Level string `toml:"level" env:"PODSHELF_LOG_LEVEL"`
}

// Addr returns host:port for [net/http.Server].
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogLevel parses the configured level, falling back to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Validate reports configuration values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Repository.Backend {
	case BackendMemory, BackendDatabase:
	default:
		return fmt.Errorf("%w: repository backend must be %q or %q, got %q",
			ErrInvalidConfig, BackendMemory, BackendDatabase, c.Repository.Backend)
	}
	if c.Repository.Backend == BackendDatabase && c.Database.Path == "" {
		return fmt.Errorf("%w: database path is required for the database backend", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("%w: server port must be positive, got %d", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrMissingConfig, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// ResolveConfig loads path when it exists (defaults otherwise), then applies environment overrides and validates.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		loaded, err := LoadConfig(path)
		switch {
		case err == nil:
			config = loaded
		case !errors.Is(err, ErrMissingConfig):
			return nil, err
		}
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides config fields from PODSHELF_* environment variables.
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
