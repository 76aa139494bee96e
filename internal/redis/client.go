// Package redis wraps the go-redis client so repositories depend on a small
// interface and tests can point them at miniredis.
package redis

import (
	"crypto/tls"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures Redis client behavior
type Options struct {
	PoolSize        int
	MinIdleConns    int
	ConnMaxIdleTime time.Duration
	MaxRetries      int
	UseTLS          bool
}

// NewClient creates a Redis client for a single instance
func NewClient(endpoint string, opts *Options) (Client, error) {
	if endpoint == "" {
		return nil, errors.New("redis: endpoint is required")
	}

	if opts == nil {
		opts = &Options{}
	}

	redisOpts := &redis.Options{
		Addr:            endpoint,
		MinIdleConns:    opts.MinIdleConns,
		PoolSize:        opts.PoolSize,
		ConnMaxIdleTime: opts.ConnMaxIdleTime,
		MaxRetries:      opts.MaxRetries,
	}

	if opts.UseTLS {
		redisOpts.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402 // For self-signed certs
		}
	}

	return redis.NewClient(redisOpts), nil
}

// NewClusterClient creates a Redis client for cluster mode
func NewClusterClient(endpoints []string, opts *Options) (Client, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("redis: at least one endpoint is required")
	}

	if opts == nil {
		opts = &Options{}
	}

	clusterOpts := &redis.ClusterOptions{
		Addrs:        endpoints,
		MinIdleConns: opts.MinIdleConns,
		PoolSize:     opts.PoolSize,
		MaxRetries:   opts.MaxRetries,
	}

	if opts.UseTLS {
		clusterOpts.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}

	return redis.NewClusterClient(clusterOpts), nil
}

// Connect picks a single-instance or cluster client from the address list
func Connect(endpoints []string, opts *Options) (Client, error) {
	switch len(endpoints) {
	case 0:
		return nil, errors.New("redis: at least one endpoint is required")
	case 1:
		return NewClient(endpoints[0], opts)
	default:
		return NewClusterClient(endpoints, opts)
	}
}
