package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"aichat-backend/internal/ai"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DriverMongo, cfg.Storage.Driver)
	require.Equal(t, ai.ProviderGemini, cfg.LLM.Provider)
	require.Equal(t, 10, cfg.LLM.MaxHistory)
	require.Equal(t, 60, cfg.Auth.JWTExpireMinute)
	require.Equal(t, "token", cfg.Auth.CookieName)
	require.Equal(t, "0.0.0.0:3000", cfg.HTTPAddr())
	require.False(t, cfg.IsProduction())
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
[app]
env = "production"
port = 9000

[storage]
driver = "mysql"

[llm]
provider = "openai"
model = "from-file"
max_history = 4
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("LLM_MODEL", "from-env")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, 9000, cfg.App.Port)
	require.Equal(t, DriverMySQL, cfg.Storage.Driver)
	require.Equal(t, ai.ProviderOpenAI, cfg.LLM.Provider)
	require.Equal(t, "from-env", cfg.LLM.Model)
	require.Equal(t, 4, cfg.LLM.MaxHistory)
	require.False(t, cfg.RateLimit.Enabled)
}

func TestLoad_InvalidIntEnvKeepsFallback(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("APP_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3000, cfg.App.Port)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("STORAGE_DRIVER", "cassandra")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsEmptySecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("JWT_SECRET", "  ")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("APP_ENV", EnvProduction)

	_, err := Load()
	require.ErrorContains(t, err, "must be set in production")
}

func TestLoad_BrokenFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfigFile(t, "[app\nport = "))

	_, err := Load()
	require.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.Password = "secret"
	require.Equal(t, "root:secret@tcp(127.0.0.1:3306)/aichat?parseTime=true&loc=Local&charset=utf8mb4", cfg.MySQLDSN())
}
