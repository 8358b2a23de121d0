package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// CLIConfig is the terminal client's configuration file.
type CLIConfig struct {
	APIURL         string        `yaml:"api_url"`
	Identity       string        `yaml:"identity"` // "api" or "supabase"
	SupabaseURL    string        `yaml:"supabase_url"`
	SupabaseKey    string        `yaml:"supabase_key"`
	DefaultModel   string        `yaml:"default_model"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	StateDir       string        `yaml:"state_dir"`
}

// DefaultCLIConfig returns the settings used when no file exists.
func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		APIURL:         "http://localhost:8000",
		Identity:       "api",
		DefaultModel:   "mistralai/mistral-7b-instruct",
		RequestTimeout: 60 * time.Second,
	}
}

// DefaultCLIDir returns ~/.config/tubot (or the platform equivalent).
func DefaultCLIDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locating config dir")
	}
	return filepath.Join(dir, "tubot"), nil
}

// LoadCLI reads path over the defaults. A missing file is not an error.
// TUBOT_API_URL, SUPABASE_URL and SUPABASE_API_KEY override the file.
func LoadCLI(path string) (CLIConfig, error) {
	cfg := DefaultCLIConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return CLIConfig{}, errors.Wrapf(err, "parsing %s", path)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return CLIConfig{}, errors.Wrapf(err, "reading %s", path)
	}

	cfg.APIURL = getEnv("TUBOT_API_URL", cfg.APIURL)
	cfg.SupabaseURL = getEnv("SUPABASE_URL", cfg.SupabaseURL)
	cfg.SupabaseKey = getEnv("SUPABASE_API_KEY", cfg.SupabaseKey)

	if cfg.StateDir == "" {
		cfg.StateDir = filepath.Dir(path)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultCLIConfig().RequestTimeout
	}

	switch cfg.Identity {
	case "api":
	case "supabase":
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return CLIConfig{}, errors.New("supabase identity needs supabase_url and supabase_key")
		}
	default:
		return CLIConfig{}, errors.Errorf("unknown identity backend %q", cfg.Identity)
	}
	return cfg, nil
}
