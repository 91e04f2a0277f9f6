// Package daemon manages the HabitFlow daemon lifecycle and configuration.
package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/habitflow/habitflow/internal/domain"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Storage   StorageConfig   `toml:"storage"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Rewards   []RewardConfig  `toml:"rewards"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	CORSOrigin string `toml:"cors_origin"`
}

// StorageConfig selects and tunes the persistence backend.
type StorageConfig struct {
	Backend     string `toml:"backend"` // sqlite | json
	Dir         string `toml:"dir"`
	SaveTimeout string `toml:"save_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	Env   string `toml:"env"` // development | production
}

// TelemetryConfig controls metrics and health probing.
type TelemetryConfig struct {
	Prometheus     bool   `toml:"prometheus"`
	HealthInterval string `toml:"health_interval"`
}

// RewardConfig is one entry of the reward catalog.
type RewardConfig struct {
	ID          string `toml:"id"`
	Title       string `toml:"title"`
	Description string `toml:"description"`
	Icon        string `toml:"icon"`
	Points      int    `toml:"points"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := habitflowHome()
	return Config{
		API: APIConfig{
			Host:       "127.0.0.1",
			Port:       7878,
			CORSOrigin: "*",
		},
		Storage: StorageConfig{
			Backend:     BackendSQLite,
			Dir:         filepath.Join(homeDir, "data"),
			SaveTimeout: "5s",
		},
		Logging: LoggingConfig{
			Level: "info",
			Env:   "development",
		},
		Telemetry: TelemetryConfig{
			Prometheus:     true,
			HealthInterval: "60s",
		},
	}
}

// LoadConfig loads an optional .env, reads $HABITFLOW_HOME/config.toml over
// the defaults, then applies HABITFLOW_* environment overrides.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}
	return LoadConfigFrom(ConfigPath())
}

// LoadConfigFrom reads config from path, falling back to defaults when the
// file does not exist.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes the config to $HABITFLOW_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Validate rejects configurations the daemon cannot start with.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendJSON:
	default:
		return fmt.Errorf("storage.backend %q: must be %s or %s", c.Storage.Backend, BackendSQLite, BackendJSON)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if c.Storage.SaveTimeout != "" {
		if _, err := time.ParseDuration(c.Storage.SaveTimeout); err != nil {
			return fmt.Errorf("storage.save_timeout: %w", err)
		}
	}
	seen := make(map[string]bool, len(c.Rewards))
	for i, r := range c.Rewards {
		if r.ID == "" || r.Title == "" {
			return fmt.Errorf("rewards[%d]: id and title are required", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("rewards[%d]: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// SaveTimeout returns the per-save deadline.
func (c Config) SaveTimeout() time.Duration {
	return parseDuration(c.Storage.SaveTimeout, 5*time.Second)
}

// HealthInterval returns how often health checks run.
func (c Config) HealthInterval() time.Duration {
	return parseDuration(c.Telemetry.HealthInterval, 60*time.Second)
}

// RewardSeed converts [[rewards]] into domain rewards. Nil when none are
// configured, meaning the built-in catalog applies.
func (c Config) RewardSeed() []domain.Reward {
	if len(c.Rewards) == 0 {
		return nil
	}
	out := make([]domain.Reward, len(c.Rewards))
	for i, r := range c.Rewards {
		out[i] = domain.Reward{
			ID:               r.ID,
			Title:            r.Title,
			Description:      r.Description,
			Icon:             r.Icon,
			PointRequirement: r.Points,
		}
	}
	return out
}

// ─── Environment ────────────────────────────────────────────────────────────

func applyEnv(cfg *Config) {
	cfg.API.Host = getEnv("HABITFLOW_HOST", cfg.API.Host)
	cfg.API.Port = getEnvInt("HABITFLOW_PORT", cfg.API.Port)
	cfg.Storage.Backend = strings.ToLower(getEnv("HABITFLOW_STORAGE", cfg.Storage.Backend))
	cfg.Storage.Dir = getEnv("HABITFLOW_DATA_DIR", cfg.Storage.Dir)
	cfg.Logging.Level = getEnv("HABITFLOW_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Env = getEnv("HABITFLOW_ENV", cfg.Logging.Env)
	cfg.Telemetry.Prometheus = getEnvBool("HABITFLOW_METRICS", cfg.Telemetry.Prometheus)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// ─── Paths ──────────────────────────────────────────────────────────────────

// habitflowHome returns the HabitFlow home directory.
func habitflowHome() string {
	if env := os.Getenv("HABITFLOW_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".habitflow")
}

// HabitflowHome is exported for use by other packages.
func HabitflowHome() string {
	return habitflowHome()
}

// ConfigPath returns the config file location.
func ConfigPath() string {
	return filepath.Join(habitflowHome(), "config.toml")
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
