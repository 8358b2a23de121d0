package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

type Config struct {
	Mode Mode

	Port     string
	LogLevel string

	// Language model provider: "mock", "openrouter" or "vertex"
	LLMProvider       string
	DefaultModel      string
	OpenRouterAPIKey  string
	OpenRouterURL     string
	OpenRouterReferer string
	GCPProjectID      string
	GCPLocation       string
	VertexModel       string
	CompletionTimeout time.Duration

	StorageBackend string // "memory", "sqlite", "postgres" or "firestore"
	SQLitePath     string
	DatabaseURL    string
	RedisURL       string

	JWTSecret string
	TokenTTL  time.Duration

	ChatRateLimit  int // requests per minute per client, 0 disables
	AllowedOrigins []string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	return n, nil
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	return d, nil
}

func getListEnv(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, entry := range strings.Split(v, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

// Load reads all env vars (and a .env file when present) and builds the config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var mode Mode
	switch getEnv("TUBOT_ENV", "development") {
	case "production":
		mode = ModeProduction
	default:
		mode = ModeDevelopment
	}

	cfg := &Config{
		Mode: mode,

		Port:     getEnv("TUBOT_PORT", "8000"),
		LogLevel: getEnv("TUBOT_LOG_LEVEL", "info"),

		LLMProvider:       getEnv("TUBOT_LLM_PROVIDER", "mock"),
		DefaultModel:      getEnv("TUBOT_DEFAULT_MODEL", "mistralai/mistral-7b-instruct"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterURL:     getEnv("TUBOT_OPENROUTER_URL", "https://openrouter.ai/api/v1"),
		OpenRouterReferer: getEnv("TUBOT_OPENROUTER_REFERER", "http://localhost"),
		GCPProjectID:      os.Getenv("TUBOT_GCP_PROJECT"),
		GCPLocation:       getEnv("TUBOT_GCP_LOCATION", "us-central1"),
		VertexModel:       getEnv("TUBOT_VERTEX_MODEL", "gemini-2.5-flash"),

		StorageBackend: getEnv("TUBOT_STORAGE_BACKEND", "memory"),
		SQLitePath:     getEnv("TUBOT_SQLITE_PATH", "./data/tubot.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),

		JWTSecret: os.Getenv("TUBOT_JWT_SECRET"),

		AllowedOrigins: getListEnv("TUBOT_CORS_ORIGINS", []string{"*"}),
	}

	var err error
	if cfg.CompletionTimeout, err = getDurationEnv("TUBOT_COMPLETION_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDurationEnv("TUBOT_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ChatRateLimit, err = getIntEnv("TUBOT_CHAT_RATE_LIMIT", 30); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations Load cannot default its way out of.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "mock":
	case "openrouter":
		if c.OpenRouterAPIKey == "" {
			return errors.New("OPENROUTER_API_KEY must be set for the openrouter provider")
		}
	case "vertex":
		if c.GCPProjectID == "" || c.GCPLocation == "" {
			return errors.New("TUBOT_GCP_PROJECT and TUBOT_GCP_LOCATION must be set for the vertex provider")
		}
	default:
		return errors.Errorf("unknown TUBOT_LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.StorageBackend {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be set for the postgres storage backend")
		}
	case "firestore":
		if c.GCPProjectID == "" {
			return errors.New("TUBOT_GCP_PROJECT must be set for the firestore storage backend")
		}
	default:
		return errors.Errorf("unknown TUBOT_STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.Mode == ModeProduction && c.JWTSecret == "" {
		return errors.New("TUBOT_JWT_SECRET must be set in production")
	}
	if c.JWTSecret == "" {
		c.JWTSecret = "tubot-development-secret"
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Mode == ModeDevelopment
}
