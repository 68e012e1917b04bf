// Package config loads the service configuration from an optional YAML file
// and the environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "SEATING_CONFIG"

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

type Auth struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Admins       []string `yaml:"admins"`
}

type Engine struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout"`
}

type Preview struct {
	TTL time.Duration `yaml:"ttl"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Config struct {
	Listen   string  `yaml:"listen"`
	Postgres string  `yaml:"postgres"`
	Redis    Redis   `yaml:"redis"`
	Auth     Auth    `yaml:"auth"`
	Engine   Engine  `yaml:"engine"`
	Preview  Preview `yaml:"preview"`
	Log      Log     `yaml:"log"`
}

func Default() Config {
	return Config{
		Listen: ":8080",
		Redis:  Redis{Addr: "127.0.0.1:6379"},
		Engine: Engine{
			MaxAttempts: 20000,
			Timeout:     10 * time.Second,
		},
		Preview: Preview{TTL: 30 * time.Minute},
		Log:     Log{Level: "info"},
	}
}

// Load reads path (if non-empty and present) over the defaults and then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("LISTEN_ADDR", &c.Listen)
	str("PGCONN", &c.Postgres)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("CLIENT_ID", &c.Auth.ClientID)
	str("CLIENT_SECRET", &c.Auth.ClientSecret)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("ADMINS"); ok && v != "" {
		c.Auth.Admins = nil
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				c.Auth.Admins = append(c.Auth.Admins, a)
			}
		}
	}
	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: REDIS_DB: %w", err)
		}
		c.Redis.DB = n
	}
	if v, ok := lookup("ENGINE_MAX_ATTEMPTS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: ENGINE_MAX_ATTEMPTS: %w", err)
		}
		c.Engine.MaxAttempts = n
	}
	if v, ok := lookup("ENGINE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: ENGINE_TIMEOUT: %w", err)
		}
		c.Engine.Timeout = d
	}
	return nil
}

func (c Config) Validate() error {
	var missing []string
	if c.Postgres == "" {
		missing = append(missing, "PGCONN")
	}
	if c.Auth.ClientID == "" {
		missing = append(missing, "CLIENT_ID")
	}
	if c.Auth.ClientSecret == "" {
		missing = append(missing, "CLIENT_SECRET")
	}
	if len(c.Auth.Admins) == 0 {
		missing = append(missing, "ADMINS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: %s required", strings.Join(missing, ", "))
	}
	if c.Engine.MaxAttempts <= 0 {
		return fmt.Errorf("config: engine.max_attempts must be positive, got %d", c.Engine.MaxAttempts)
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("config: engine.timeout must be positive, got %s", c.Engine.Timeout)
	}
	if c.Preview.TTL <= 0 {
		return fmt.Errorf("config: preview.ttl must be positive, got %s", c.Preview.TTL)
	}
	return nil
}

func (c Config) IsAdmin(email string) bool {
	for _, a := range c.Auth.Admins {
		if strings.EqualFold(a, email) {
			return true
		}
	}
	return false
}

// SlogLevel maps log.level onto slog. Unknown names fall back to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
