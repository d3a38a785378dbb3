package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends understood by storage.Open.
const (
	BackendMemory   = "memory"
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Duration is a time.Duration that reads and writes Go duration strings ("3s").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr      string `json:"addr"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"keyPrefix"`
}

// Config holds application configuration.
type Config struct {
	Backend     string      `json:"backend"`
	DataPath    string      `json:"dataPath"`
	SQLitePath  string      `json:"sqlitePath"`
	Redis       RedisConfig `json:"redis"`
	PostgresDSN string      `json:"postgresDsn"`

	LogLevel  string `json:"logLevel"`  // debug | info | warn | error
	LogFormat string `json:"logFormat"` // console | json

	ListenAddr string `json:"listenAddr"`

	FetchTimeout       Duration `json:"fetchTimeout"`
	OpenGraphTimeout   Duration `json:"openGraphTimeout"`
	FaviconRefreshAge  Duration `json:"faviconRefreshAge"`
	RefreshConcurrency int      `json:"refreshConcurrency"`
	ExcerptFallback    bool     `json:"excerptFallback"`

	CullTimeout        Duration `json:"cullTimeout"`
	CullConcurrency    int      `json:"cullConcurrency"`
	CullExcludeDomains []string `json:"cullExcludeDomains"`
}

// PrettyLog reports whether the console encoder should be used.
func (c *Config) PrettyLog() bool {
	return c.LogFormat != "json"
}

// DefaultDir returns ~/.config/bmp, or the working directory if home is unknown.
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config", "bmp")
}

// DefaultConfigFilePath returns the default config path: ~/.config/bmp/config.json
func DefaultConfigFilePath() string {
	return filepath.Join(DefaultDir(), "config.json")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	dir := DefaultDir()
	return Config{
		Backend:    BackendJSON,
		DataPath:   filepath.Join(dir, "bookmarks.json"),
		SQLitePath: filepath.Join(dir, "bookmarks.db"),
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "bmp:",
		},
		LogLevel:           "info",
		LogFormat:          "console",
		ListenAddr:         "127.0.0.1:7787",
		FetchTimeout:       Duration(3 * time.Second),
		OpenGraphTimeout:   Duration(10 * time.Second),
		FaviconRefreshAge:  Duration(7 * 24 * time.Hour),
		RefreshConcurrency: 8,
		CullTimeout:        Duration(10 * time.Second),
		CullConcurrency:    10,
		CullExcludeDomains: []string{"github.com", "gitlab.com"},
	}
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(&config)
	return &config, nil
}

// applyDefaults fills zero-valued fields from DefaultConfig.
func applyDefaults(config *Config) {
	defaults := DefaultConfig()
	if config.Backend == "" {
		config.Backend = defaults.Backend
	}
	if config.DataPath == "" {
		config.DataPath = defaults.DataPath
	}
	if config.SQLitePath == "" {
		config.SQLitePath = defaults.SQLitePath
	}
	if config.Redis.Addr == "" {
		config.Redis.Addr = defaults.Redis.Addr
	}
	if config.Redis.KeyPrefix == "" {
		config.Redis.KeyPrefix = defaults.Redis.KeyPrefix
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.LogFormat == "" {
		config.LogFormat = defaults.LogFormat
	}
	if config.ListenAddr == "" {
		config.ListenAddr = defaults.ListenAddr
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = defaults.FetchTimeout
	}
	if config.OpenGraphTimeout <= 0 {
		config.OpenGraphTimeout = defaults.OpenGraphTimeout
	}
	if config.FaviconRefreshAge <= 0 {
		config.FaviconRefreshAge = defaults.FaviconRefreshAge
	}
	if config.RefreshConcurrency <= 0 {
		config.RefreshConcurrency = defaults.RefreshConcurrency
	}
	if config.CullTimeout <= 0 {
		config.CullTimeout = defaults.CullTimeout
	}
	if config.CullConcurrency <= 0 {
		config.CullConcurrency = defaults.CullConcurrency
	}
	if config.CullExcludeDomains == nil {
		config.CullExcludeDomains = defaults.CullExcludeDomains
	}
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Load reads the config file, then a .env file (if present) and BMP_*
// environment variables, which take precedence.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with BMP_* environment variables.
func ApplyEnv(cfg *Config) error {
	cfg.Backend = getenv("BMP_BACKEND", cfg.Backend)
	cfg.DataPath = getenv("BMP_DATA_PATH", cfg.DataPath)
	cfg.SQLitePath = getenv("BMP_SQLITE_PATH", cfg.SQLitePath)
	cfg.Redis.Addr = getenv("BMP_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getenv("BMP_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.PostgresDSN = getenv("BMP_POSTGRES_DSN", cfg.PostgresDSN)
	cfg.LogLevel = getenv("BMP_LOG_LEVEL", cfg.LogLevel)
	cfg.ListenAddr = getenv("BMP_LISTEN_ADDR", cfg.ListenAddr)

	var err error
	if cfg.Redis.DB, err = getenvInt("BMP_REDIS_DB", cfg.Redis.DB); err != nil {
		return err
	}
	if v := os.Getenv("BMP_PRETTY_LOG"); v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean value for BMP_PRETTY_LOG: %s", v)
		}
		cfg.LogFormat = "json"
		if pretty {
			cfg.LogFormat = "console"
		}
	}
	if cfg.FetchTimeout, err = getenvDuration("BMP_FETCH_TIMEOUT", cfg.FetchTimeout); err != nil {
		return err
	}
	if cfg.OpenGraphTimeout, err = getenvDuration("BMP_OPENGRAPH_TIMEOUT", cfg.OpenGraphTimeout); err != nil {
		return err
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid integer value for %s: %s", key, v)
	}
	return i, nil
}

func getenvDuration(key string, def Duration) (Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid duration value for %s: %s", key, v)
	}
	return Duration(d), nil
}
