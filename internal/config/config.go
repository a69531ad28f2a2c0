package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvGatewayURL = "SEMCHECK_GATEWAY_URL"
	EnvLogLevel   = "SEMCHECK_LOG_LEVEL"
)

// GatewayConfig holds connection details for the scoring service.
type GatewayConfig struct {
	BaseURL           string  `yaml:"base_url" validate:"required,url"`
	TimeoutSecs       int     `yaml:"timeout_secs" validate:"gte=0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
	MaxUploadMB       int     `yaml:"max_upload_mb" validate:"gt=0"`
}

// Timeout returns the client timeout; zero keeps the transport default.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// MaxUploadBytes returns the upload limit in bytes.
func (g GatewayConfig) MaxUploadBytes() int64 {
	return int64(g.MaxUploadMB) << 20
}

// LogConfig configures the rotating log file.
type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	File       string `yaml:"file" validate:"required"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gt=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
}

// UIConfig holds interface preferences.
type UIConfig struct {
	StartMode string `yaml:"start_mode" validate:"oneof=compare check"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Gateway GatewayConfig `yaml:"gateway"`
	Log     LogConfig     `yaml:"log"`
	UI      UIConfig      `yaml:"ui"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, cfg.Validate()
}

// LoadDefault tries ./config.yaml first, then ~/.config/semcheck/config.yaml.
// If neither exists, it writes defaults to ~/.config/semcheck/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, cfg.Validate()
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

var validate = validator.New()

// Validate checks field constraints declared in struct tags.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
		}
		return err
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "semcheck", "config.yaml"), nil
}

func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "state", "semcheck", "semcheck.log")
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Gateway: GatewayConfig{BaseURL: "http://localhost:8000", MaxUploadMB: 20},
		Log:     LogConfig{Level: "info", File: defaultLogPath(), MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 30},
		UI:      UIConfig{StartMode: "compare"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = def.Gateway.BaseURL
	}
	if cfg.Gateway.MaxUploadMB == 0 {
		cfg.Gateway.MaxUploadMB = def.Gateway.MaxUploadMB
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.File == "" {
		cfg.Log.File = def.Log.File
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = def.Log.MaxSizeMB
	}
	if cfg.UI.StartMode == "" {
		cfg.UI.StartMode = def.UI.StartMode
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.UI.StartMode = strings.ToLower(cfg.UI.StartMode)
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv(EnvGatewayURL); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}
