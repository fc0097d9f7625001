package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL  = "http://localhost:8080/api"
	DefaultTimeout = 10 * time.Second
)

type Config struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Tracing string        `yaml:"tracing"` // "" or "stdout"
}

type StorageConfig struct {
	Backend   string `yaml:"backend"` // file, memory, redis, sql
	Path      string `yaml:"path"`
	RedisAddr string `yaml:"redis_addr"`
	SQLDriver string `yaml:"sql_driver"`
	SQLDSN    string `yaml:"sql_dsn"`
}

type LogConfig struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		APIURL:  DefaultAPIURL,
		Timeout: DefaultTimeout,
		Storage: StorageConfig{Backend: "file"},
		Log:     LogConfig{Mode: "dev", Level: "warn"},
	}
}

// Load layers defaults, the YAML file, then the environment (after .env has
// been folded into it). The second return value lists non-fatal problems such
// as a missing .env file.
func Load() (Config, []string, error) {
	var warnings []string
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, ".env file not found")
	}

	cfg := Default()
	path := os.Getenv("LEARNSNAP_CONFIG")
	explicit := path != ""
	if !explicit {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".learnsnap", "config.yaml")
		}
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, warnings, err
			}
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, warnings, err
	}
	return cfg, warnings, nil
}

func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.APIURL = envString("LEARNSNAP_API_URL", cfg.APIURL)
	cfg.Timeout = envDuration("LEARNSNAP_TIMEOUT", cfg.Timeout)
	cfg.Storage.Backend = envString("LEARNSNAP_STORAGE", cfg.Storage.Backend)
	cfg.Storage.Path = envString("LEARNSNAP_STORAGE_PATH", cfg.Storage.Path)
	cfg.Storage.RedisAddr = envString("REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Storage.SQLDriver = envString("LEARNSNAP_SQL_DRIVER", cfg.Storage.SQLDriver)
	cfg.Storage.SQLDSN = envString("LEARNSNAP_SQL_DSN", cfg.Storage.SQLDSN)
	cfg.Log.Mode = envString("LOG_MODE", cfg.Log.Mode)
	cfg.Log.Level = envString("LOG_LEVEL", cfg.Log.Level)
	cfg.Tracing = envString("LEARNSNAP_TRACING", cfg.Tracing)
}

func (c Config) Validate() error {
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api url must be http(s): %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

func envString(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func envDuration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
