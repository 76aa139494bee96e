// Package config loads application configuration from the environment, an
// optional .env file and struct tag defaults.
package config

import (
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/KirkDiggler/rpg-loadout/internal/errors"
)

// EnvPrefix prefixes every environment variable, e.g. LOADOUT_REDIS_ADDRS
const EnvPrefix = "LOADOUT"

// Storage backends
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	GameData  GameDataConfig  `mapstructure:"gamedata"`
	// Storage selects where save records live
	Storage string `mapstructure:"storage" default:"redis"`
}

// RedisConfig configures the save record store
type RedisConfig struct {
	// Addrs with more than one entry selects cluster mode
	Addrs           []string      `mapstructure:"addrs" default:"localhost:6379"`
	PoolSize        int           `mapstructure:"pool_size" default:"10"`
	MinIdleConns    int           `mapstructure:"min_idle_conns" default:"0"`
	MaxRetries      int           `mapstructure:"max_retries" default:"3"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" default:"5m"`
	UseTLS          bool          `mapstructure:"use_tls" default:"false"`
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level" default:"info"`
	Format string `mapstructure:"format" default:"text"`
}

// InventoryConfig sizes new inventories
type InventoryConfig struct {
	Capacity     int `mapstructure:"capacity" default:"30"`
	ReserveSlack int `mapstructure:"reserve_slack" default:"10"`
	// StartLevel is the character level of a new session
	StartLevel int `mapstructure:"start_level" default:"1"`
}

// GameDataConfig points at the item and layout definitions
type GameDataConfig struct {
	// Path to a YAML file; empty uses the built-in data
	Path string `mapstructure:"path" default:""`
}

// Load reads configuration from the environment, overlaying a .env file in
// dir when present
func Load(dir string) (*Config, error) {
	envPath := ".env"
	if dir != "" && dir != "." {
		envPath = dir + "/.env"
	}

	// A missing .env is normal outside development
	_ = godotenv.Overload(envPath)

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	bindValues(v, Config{}, "")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the Config.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	switch c.Storage {
	case StorageRedis:
		if len(c.Redis.Addrs) == 0 {
			vb.RequiredField("redis.addrs")
		}
	case StorageMemory:
	default:
		vb.InvalidField("storage", "must be redis or memory")
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		vb.InvalidField("log.level", err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		vb.InvalidField("log.format", "must be text or json")
	}

	if c.Inventory.Capacity < 0 {
		vb.Field("inventory.capacity", "cannot be negative")
	}
	if c.Inventory.ReserveSlack < 0 {
		vb.Field("inventory.reserve_slack", "cannot be negative")
	}
	errors.ValidatePositive("inventory.start_level", c.Inventory.StartLevel, vb)

	return vb.Build()
}

// NewLogger builds the slog logger described by the log section
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, err
	}
	return level, nil
}

// bindValues registers every mapstructure key with its default so
// AutomaticEnv can find it
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
