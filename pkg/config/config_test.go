package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Caisse-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "caisse-api", cfg.App.Name)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("DB_LOCK_TIMEOUT", "750ms")
	t.Setenv("DB_STATEMENT_TIMEOUT", "12")
	t.Setenv("DB_MAX_CONNS", "8")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.DB.LockTimeout)
	assert.Equal(t, 12*time.Second, cfg.DB.StatementTimeout)
	assert.Equal(t, 8, cfg.DB.MaxConns)
	assert.True(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_MinMayorQueMax(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "2")
	t.Setenv("DB_MIN_CONNS", "5")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "caisse", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/caisse?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
