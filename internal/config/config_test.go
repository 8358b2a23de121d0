package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TUBOT_ENV", "")
	t.Setenv("TUBOT_LLM_PROVIDER", "")
	t.Setenv("TUBOT_STORAGE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ModeDevelopment, cfg.Mode)
	require.Equal(t, "8000", cfg.Port)
	require.Equal(t, "mock", cfg.LLMProvider)
	require.Equal(t, "memory", cfg.StorageBackend)
	require.Equal(t, 60*time.Second, cfg.CompletionTimeout)
	require.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadRejectsOpenRouterWithoutKey(t *testing.T) {
	t.Setenv("TUBOT_LLM_PROVIDER", "openrouter")
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("TUBOT_ENV", "production")
	t.Setenv("TUBOT_JWT_SECRET", "")
	t.Setenv("TUBOT_LLM_PROVIDER", "mock")
	t.Setenv("TUBOT_STORAGE_BACKEND", "memory")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("TUBOT_COMPLETION_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadCLIMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TUBOT_API_URL", "")
	dir := t.TempDir()

	cfg, err := LoadCLI(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.APIURL)
	require.Equal(t, "api", cfg.Identity)
	require.Equal(t, dir, cfg.StateDir)
}

func TestLoadCLIReadsYAML(t *testing.T) {
	t.Setenv("TUBOT_API_URL", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://tubot.example.com
identity: supabase
supabase_url: https://xyz.supabase.co
supabase_key: anon
request_timeout: 15s
`), 0o600))

	cfg, err := LoadCLI(path)
	require.NoError(t, err)
	require.Equal(t, "https://tubot.example.com", cfg.APIURL)
	require.Equal(t, "supabase", cfg.Identity)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoadCLISupabaseNeedsCredentials(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("identity: supabase\n"), 0o600))

	_, err := LoadCLI(path)
	require.Error(t, err)
}
