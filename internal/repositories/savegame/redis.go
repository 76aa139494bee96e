package savegame

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-loadout/internal/redis"
	"github.com/KirkDiggler/rpg-loadout/internal/savegame"
)

const (
	saveKeyPrefix = "savegame:player:"
	playerIndex   = "savegame:players"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis save repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed save repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	result, err := r.client.Get(ctx, GetKey(input.PlayerID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("save for player %s not found", input.PlayerID)
		}
		return nil, errors.Wrapf(err, "failed to get save for player %s", input.PlayerID)
	}

	var rec savegame.Record
	if err := json.Unmarshal([]byte(result), &rec); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "failed to unmarshal save record")
	}

	return &GetOutput{Record: &rec}, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	rec, err := prepare(input, r.clock.Now().Unix())
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal save record")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, GetKey(input.PlayerID), data, 0)
	pipe.SAdd(ctx, playerIndex, input.PlayerID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to save player %s", input.PlayerID)
	}

	slog.DebugContext(ctx, "Saved loadout",
		"player_id", input.PlayerID,
		"version", int(rec.Version),
		"entries", len(rec.Inventory))

	return &SaveOutput{Record: rec}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	key := GetKey(input.PlayerID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check save existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("save for player %s not found", input.PlayerID)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, playerIndex, input.PlayerID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete save for player %s", input.PlayerID)
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	ids, err := r.client.SMembers(ctx, playerIndex).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list saves")
	}

	sort.Strings(ids)
	return &ListOutput{PlayerIDs: ids}, nil
}

// GetKey returns the Redis key of a player's save
// Exposed for testing purposes
func GetKey(playerID string) string {
	return saveKeyPrefix + playerID
}
