package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-loadout/internal/config"
	"github.com/KirkDiggler/rpg-loadout/internal/gamedata"
	"github.com/KirkDiggler/rpg-loadout/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-loadout/internal/redis"
	savegamerepo "github.com/KirkDiggler/rpg-loadout/internal/repositories/savegame"
)

// newRepository builds the save store selected by configuration. The
// returned function releases its connections.
func newRepository(ctx context.Context, storage string) (savegamerepo.Repository, func(), error) {
	if storage == config.StorageMemory {
		return savegamerepo.NewInMemory(clock.New()), func() {}, nil
	}

	client, err := redisclient.Connect(cfg.Redis.Addrs, &redisclient.Options{
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		ConnMaxIdleTime: cfg.Redis.ConnMaxIdleTime,
		MaxRetries:      cfg.Redis.MaxRetries,
		UseTLS:          cfg.Redis.UseTLS,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}

	if err := client.Ping(ctx).Err(); err != nil {
		closeClient()
		return nil, nil, fmt.Errorf("failed to reach redis at %v: %w", cfg.Redis.Addrs, err)
	}

	repo, err := savegamerepo.NewRedis(&savegamerepo.RedisConfig{Client: client, Clock: clock.New()})
	if err != nil {
		closeClient()
		return nil, nil, fmt.Errorf("failed to create save repository: %w", err)
	}

	slog.Debug("Connected to redis", "addrs", cfg.Redis.Addrs)
	return repo, closeClient, nil
}

func loadGameData() (*gamedata.GameData, error) {
	data, err := gamedata.Load(cfg.GameData.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load game data: %w", err)
	}
	return data, nil
}
