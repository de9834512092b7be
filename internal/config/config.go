// Package config resolves runtime settings from defaults, an optional TOML
// file and TURING_* environment variables, in that order of precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/runner"
	"github.com/aretw0/turing/pkg/session"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TURING_"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds the settings shared by every command.
type Config struct {
	LogLevel      string        `env:"LOG_LEVEL"`
	LogFormat     string        `env:"LOG_FORMAT"`
	Speed         time.Duration `env:"SPEED"`
	MaxSteps      int           `env:"MAX_STEPS"`
	MachinesDir   string        `env:"MACHINES_DIR"`
	Store         string        `env:"STORE"`
	SessionDir    string        `env:"SESSION_DIR"`
	SessionTTL    time.Duration `env:"SESSION_TTL"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"`
	Addr          string        `env:"ADDR"`
	// EncryptionKey is a base64 AES-256 key; when set, sessions are sealed.
	EncryptionKey string   `env:"ENCRYPTION_KEY"`
	FallbackKeys  []string `env:"ENCRYPTION_FALLBACK_KEYS" envSeparator:","`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Speed:     runner.DefaultSpeed,
		MaxSteps:  session.DefaultMaxSteps,
		Store:     StoreMemory,
		RedisAddr: "localhost:6379",
		Addr:      ":8080",
	}
}

type fileConfig struct {
	LogLevel      string   `toml:"log_level"`
	LogFormat     string   `toml:"log_format"`
	Speed         string   `toml:"speed"`
	MaxSteps      int      `toml:"max_steps"`
	MachinesDir   string   `toml:"machines_dir"`
	Store         string   `toml:"store"`
	SessionDir    string   `toml:"session_dir"`
	SessionTTL    string   `toml:"session_ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Addr          string   `toml:"addr"`
	EncryptionKey string   `toml:"encryption_key"`
	FallbackKeys  []string `toml:"encryption_fallback_keys"`
}

// Load builds the configuration from the process environment and, when
// path is not empty, the TOML file at path.
func Load(path string) (Config, error) {
	return LoadFrom(path, nil)
}

// LoadFrom is Load with an explicit environment; a nil map reads the
// process environment.
func LoadFrom(path string, environ map[string]string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	str := func(key, v string, dst *string) {
		if meta.IsDefined(key) {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key, v string, dst *time.Duration) error {
		if !meta.IsDefined(key) {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("log_level", raw.LogLevel, &cfg.LogLevel)
	str("log_format", raw.LogFormat, &cfg.LogFormat)
	str("machines_dir", raw.MachinesDir, &cfg.MachinesDir)
	str("store", raw.Store, &cfg.Store)
	str("session_dir", raw.SessionDir, &cfg.SessionDir)
	str("redis_addr", raw.RedisAddr, &cfg.RedisAddr)
	str("redis_password", raw.RedisPassword, &cfg.RedisPassword)
	str("addr", raw.Addr, &cfg.Addr)
	str("encryption_key", raw.EncryptionKey, &cfg.EncryptionKey)
	if meta.IsDefined("encryption_fallback_keys") {
		cfg.FallbackKeys = raw.FallbackKeys
	}
	if meta.IsDefined("max_steps") {
		cfg.MaxSteps = raw.MaxSteps
	}
	if meta.IsDefined("redis_db") {
		cfg.RedisDB = raw.RedisDB
	}
	if err := dur("speed", raw.Speed, &cfg.Speed); err != nil {
		return err
	}
	return dur("session_ttl", raw.SessionTTL, &cfg.SessionTTL)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.LogFormat))
	}
	if c.Speed <= 0 {
		errs = append(errs, fmt.Errorf("speed must be positive, got %s", c.Speed))
	}
	if c.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("max steps must be positive, got %d", c.MaxSteps))
	}
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want memory, file or redis)", c.Store))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("session ttl must not be negative, got %s", c.SessionTTL))
	}
	if _, _, err := c.Keys(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (c Config) Keys() (active []byte, fallback [][]byte, err error) {
	if c.EncryptionKey == "" {
		if len(c.FallbackKeys) > 0 {
			return nil, nil, errors.New("fallback keys need an encryption key")
		}
		return nil, nil, nil
	}
	if active, err = decodeKey(c.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("encryption key: %w", err)
	}
	for i, raw := range c.FallbackKeys {
		key, err := decodeKey(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(raw string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}
