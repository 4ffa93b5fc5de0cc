package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  allowed_origins: ["http://localhost:5173"]
storage:
  driver: sqlite
  database_path: data/finpal.db
rules:
  bulk_apply_timeout: 45s
  apply_on_write: false
display:
  currency_symbol: "€"
observability:
  logging:
    level: debug
    format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "data/finpal.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 45*time.Second, cfg.Rules.BulkApplyTimeout)
	assert.False(t, cfg.Rules.ApplyRulesOnWrite())
	assert.Equal(t, "€", cfg.Display.CurrencySymbol)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.Equal(t, ":9000", cfg.Addr())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "storage: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Storage.DatabasePath)
	assert.Equal(t, DefaultBulkApplyTimeout, cfg.Rules.BulkApplyTimeout)
	assert.True(t, cfg.Rules.ApplyRulesOnWrite())
	assert.Equal(t, "$", cfg.Display.CurrencySymbol)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("postgres without dsn", func(t *testing.T) {
		_, err := Load(writeConfig(t, "storage:\n  driver: postgres\n"))
		assert.ErrorContains(t, err, "dsn")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Load(writeConfig(t, "storage:\n  driver: mongo\n"))
		assert.ErrorContains(t, err, "unknown storage driver")
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [\n"))
		assert.Error(t, err)
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FINPAL_PORT", "7000")
	t.Setenv("FINPAL_DB_PATH", "test.db")
	t.Setenv("FINPAL_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("FINPAL_BULK_APPLY_TIMEOUT", "10s")
	t.Setenv("FINPAL_APPLY_RULES_ON_WRITE", "false")

	cfg := LoadFromEnv()

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Rules.BulkApplyTimeout)
	assert.False(t, cfg.Rules.ApplyRulesOnWrite())
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("FINPAL_DB_PATH", "")
	t.Setenv("FINPAL_BULK_APPLY_TIMEOUT", "soon")

	cfg := LoadFromEnv()

	assert.Equal(t, DefaultDatabasePath, cfg.Storage.DatabasePath)
	assert.Equal(t, DefaultBulkApplyTimeout, cfg.Rules.BulkApplyTimeout)
	assert.Equal(t, "text", cfg.Observability.Logging.Format)
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	t.Setenv("FINPAL_DB_PATH", "fallback.db")

	cfg := LoadOrEnv_WithPath("nonexistent.yaml")
	assert.NotNil(t, cfg)
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestEnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_DB_DSN", "postgres://finpal@localhost/finpal")

	cfg, err := Load(writeConfig(t, `
storage:
  driver: postgres
  dsn: "${TEST_DB_DSN}"
`))
	require.NoError(t, err)
	assert.Equal(t, "postgres://finpal@localhost/finpal", cfg.Storage.DSN)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FINPAL_CURRENCY_SYMBOL=£\n"), 0644))
	t.Setenv("FINPAL_CURRENCY_SYMBOL", "")
	os.Unsetenv("FINPAL_CURRENCY_SYMBOL")

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "£", LoadFromEnv().Display.CurrencySymbol)
	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
