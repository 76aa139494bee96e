package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-loadout/internal/config"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, config.StorageRedis, cfg.Storage)
	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 5*time.Minute, cfg.Redis.ConnMaxIdleTime)
	assert.Equal(t, 30, cfg.Inventory.Capacity)
	assert.Equal(t, 10, cfg.Inventory.ReserveSlack)
	assert.Equal(t, 1, cfg.Inventory.StartLevel)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.GameData.Path)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LOADOUT_STORAGE", "memory")
	t.Setenv("LOADOUT_INVENTORY_CAPACITY", "12")
	t.Setenv("LOADOUT_REDIS_ADDRS", "a:1,b:2")
	t.Setenv("LOADOUT_LOG_FORMAT", "json")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, config.StorageMemory, cfg.Storage)
	assert.Equal(t, 12, cfg.Inventory.Capacity)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Redis.Addrs)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOADOUT_INVENTORY_RESERVE_SLACK=4\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LOADOUT_INVENTORY_RESERVE_SLACK") })

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Inventory.ReserveSlack)
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Storage:   config.StorageMemory,
			Log:       config.LogConfig{Level: "debug", Format: "text"},
			Inventory: config.InventoryConfig{Capacity: 10, ReserveSlack: 10, StartLevel: 1},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "unknown storage", mutate: func(c *config.Config) { c.Storage = "postgres" }, wantErr: true},
		{name: "redis without addrs", mutate: func(c *config.Config) { c.Storage = config.StorageRedis }, wantErr: true},
		{name: "bad level", mutate: func(c *config.Config) { c.Log.Level = "loud" }, wantErr: true},
		{name: "bad format", mutate: func(c *config.Config) { c.Log.Format = "xml" }, wantErr: true},
		{name: "negative capacity", mutate: func(c *config.Config) { c.Inventory.Capacity = -1 }, wantErr: true},
		{name: "zero start level", mutate: func(c *config.Config) { c.Inventory.StartLevel = 0 }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := config.LogConfig{Level: "warn", Format: "json"}.NewLogger(os.Stderr)
	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
}
