package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// AppConfig is read from a YAML file under the user's home directory and then
// overridden by PAWDECK_* environment variables. All fields are optional;
// defaults are applied by the accessor methods.
//
// Example (~/.pawdeck/config.yaml):
//
// server:
//   host: 127.0.0.1
//   port: 8090
// backend:
//   base_url: http://127.0.0.1:8000
//   timeout_seconds: 75
// sync:
//   rollback_on_failure: false
//   save_status_reset_ms: 3000
// log:
//   level: info
//
// Notes:
// - If the config file does not exist, Load returns defaults without error.
// - If the config file exists but cannot be parsed, Load returns an error.
// - Port must be between 1 and 65535 and backend.base_url must be absolute.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Sync    SyncConfig    `yaml:"sync"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Host *string `yaml:"host" env:"PAWDECK_HOST"`
	Port *int    `yaml:"port" env:"PAWDECK_PORT"`
}

type BackendConfig struct {
	BaseURL        *string `yaml:"base_url" env:"PAWDECK_BACKEND_URL"`
	TimeoutSeconds *int    `yaml:"timeout_seconds" env:"PAWDECK_BACKEND_TIMEOUT"`
}

// SyncConfig tunes how optimistic mutations are reconciled.
type SyncConfig struct {
	// RollbackOnFailure restores the pre-mutation snapshot when a status or
	// field update fails remotely. Off by default.
	RollbackOnFailure *bool `yaml:"rollback_on_failure" env:"PAWDECK_ROLLBACK_ON_FAILURE"`
	SaveStatusResetMS *int  `yaml:"save_status_reset_ms" env:"PAWDECK_SAVE_STATUS_RESET_MS"`
}

type LogConfig struct {
	Level *string `yaml:"level" env:"PAWDECK_LOG_LEVEL"`
}

const (
	DefaultHost              = "127.0.0.1"
	DefaultPort              = 8090
	DefaultBackendURL        = "http://127.0.0.1:8000"
	DefaultBackendTimeout    = 75
	DefaultSaveStatusResetMS = 3000
	DefaultLogLevel          = "info"
)

// DefaultPaths returns the config dir and config file path.
func DefaultPaths() (configDir string, configFile string, err error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("get user home dir: %w", err)
	}
	configDir = filepath.Join(home, ".pawdeck")
	configFile = filepath.Join(configDir, "config.yaml")
	return configDir, configFile, nil
}

// Load reads ~/.pawdeck/config.yaml and applies environment overrides.
// If the file doesn't exist, it returns a default config and nil error.
func Load() (*AppConfig, string, error) {
	_, configFile, err := DefaultPaths()
	if err != nil {
		return nil, "", err
	}

	cfg := &AppConfig{}

	b, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, "", fmt.Errorf("parse yaml config %s: %w", configFile, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, "", fmt.Errorf("read config file %s: %w", configFile, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, "", err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w in %s", err, configFile)
	}

	return cfg, configFile, nil
}

// applyEnv overlays any PAWDECK_* variables that are set.
func applyEnv(cfg *AppConfig) error {
	var ov AppConfig
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if ov.Server.Host != nil {
		cfg.Server.Host = ov.Server.Host
	}
	if ov.Server.Port != nil {
		cfg.Server.Port = ov.Server.Port
	}
	if ov.Backend.BaseURL != nil {
		cfg.Backend.BaseURL = ov.Backend.BaseURL
	}
	if ov.Backend.TimeoutSeconds != nil {
		cfg.Backend.TimeoutSeconds = ov.Backend.TimeoutSeconds
	}
	if ov.Sync.RollbackOnFailure != nil {
		cfg.Sync.RollbackOnFailure = ov.Sync.RollbackOnFailure
	}
	if ov.Sync.SaveStatusResetMS != nil {
		cfg.Sync.SaveStatusResetMS = ov.Sync.SaveStatusResetMS
	}
	if ov.Log.Level != nil {
		cfg.Log.Level = ov.Log.Level
	}
	return nil
}

// Validate checks the effective values.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Host()) == "" {
		return errors.New("invalid server.host (empty)")
	}
	if port := c.Port(); port < 1 || port > 65535 {
		return fmt.Errorf("invalid server.port %d", port)
	}
	u, err := url.Parse(c.BackendURL())
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend.base_url %q", c.BackendURL())
	}
	if c.BackendTimeout() <= 0 {
		return fmt.Errorf("invalid backend.timeout_seconds %d", c.BackendTimeout()/time.Second)
	}
	return nil
}

// EnsureDefaultConfig writes a default config file if it doesn't already exist.
// It is safe to call on startup.
func EnsureDefaultConfig() (string, error) {
	configDir, configFile, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configFile); err == nil {
		return configFile, nil
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", configDir, err)
	}

	defaultCfg := AppConfig{
		Server:  ServerConfig{Host: ptr(DefaultHost), Port: ptr(DefaultPort)},
		Backend: BackendConfig{BaseURL: ptr(DefaultBackendURL), TimeoutSeconds: ptr(DefaultBackendTimeout)},
		Sync:    SyncConfig{RollbackOnFailure: ptr(false), SaveStatusResetMS: ptr(DefaultSaveStatusResetMS)},
		Log:     LogConfig{Level: ptr(DefaultLogLevel)},
	}
	b, err := yaml.Marshal(&defaultCfg)
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}

	if err := os.WriteFile(configFile, b, 0o600); err != nil {
		return "", fmt.Errorf("write default config file %s: %w", configFile, err)
	}

	return configFile, nil
}

func (c *AppConfig) Host() string {
	if c == nil || c.Server.Host == nil {
		return DefaultHost
	}
	v := strings.TrimSpace(*c.Server.Host)
	if v == "" {
		return DefaultHost
	}
	return v
}

func (c *AppConfig) Port() int {
	if c == nil || c.Server.Port == nil {
		return DefaultPort
	}
	return *c.Server.Port
}

func (c *AppConfig) BackendURL() string {
	if c == nil || c.Backend.BaseURL == nil {
		return DefaultBackendURL
	}
	v := strings.TrimRight(strings.TrimSpace(*c.Backend.BaseURL), "/")
	if v == "" {
		return DefaultBackendURL
	}
	return v
}

func (c *AppConfig) BackendTimeout() time.Duration {
	if c == nil || c.Backend.TimeoutSeconds == nil {
		return DefaultBackendTimeout * time.Second
	}
	return time.Duration(*c.Backend.TimeoutSeconds) * time.Second
}

func (c *AppConfig) RollbackOnFailure() bool {
	if c == nil || c.Sync.RollbackOnFailure == nil {
		return false
	}
	return *c.Sync.RollbackOnFailure
}

func (c *AppConfig) SaveStatusReset() time.Duration {
	if c == nil || c.Sync.SaveStatusResetMS == nil || *c.Sync.SaveStatusResetMS < 0 {
		return DefaultSaveStatusResetMS * time.Millisecond
	}
	return time.Duration(*c.Sync.SaveStatusResetMS) * time.Millisecond
}

func (c *AppConfig) LogLevel() string {
	if c == nil || c.Log.Level == nil || strings.TrimSpace(*c.Log.Level) == "" {
		return DefaultLogLevel
	}
	return *c.Log.Level
}

func ptr[T any](v T) *T { return &v }
