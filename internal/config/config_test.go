package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.Recurring.Interval)
	assert.True(t, cfg.Recurring.Enabled)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 4, cfg.Budgets.Concurrency)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret", "defaults lack a signing secret")
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "splitledger.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: 9090
database:
  driver: postgres
  url: postgres://localhost/ledger
auth:
  jwt_secret: from-the-file-0123456789
recurring:
  interval: 1h
`), 0o600))

	t.Setenv("SPLITLEDGER_SERVER_PORT", "7070")
	t.Setenv("SPLITLEDGER_LOGGING_FORMAT", "json")

	cfg, err := Load(viper.New(), file)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port, "environment beats the file")
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/ledger", cfg.Database.URL)
	assert.Equal(t, time.Hour, cfg.Recurring.Interval)
	assert.Equal(t, "json", cfg.Logging.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: 0},
		Database:  DatabaseConfig{Driver: "oracle"},
		Auth:      AuthConfig{JWTSecret: "short", TokenTTL: time.Second},
		Recurring: RecurringConfig{Enabled: true, Interval: time.Second},
		AMQP:      AMQPConfig{URL: "http://broker", Exchange: ""},
		Logging:   LoggingConfig{Format: "xml"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"server.port",
		"database.driver",
		"auth.jwt_secret",
		"auth.token_ttl",
		"recurring.interval",
		"amqp.url scheme",
		"amqp.exchange",
		"logging.format",
		"budgets.concurrency",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDatabaseValidate(t *testing.T) {
	assert.NoError(t, DatabaseConfig{Driver: DriverSQLite, Path: "x.db"}.Validate())
	assert.Error(t, DatabaseConfig{Driver: DriverPostgres}.Validate())
	assert.Error(t, DatabaseConfig{Driver: DriverSQLite}.Validate())
}
