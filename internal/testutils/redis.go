// Package testutils provides utilities for testing, including Redis test
// helpers and a small item catalog
package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-loadout/internal/redis"
)

// CreateTestRedisClient creates an in-memory Redis client for testing
func CreateTestRedisClient(t *testing.T) (redis.Client, func()) {
	return CreateTestRedisClientWithContext(t, nil)
}

// CreateTestRedisClientWithContext creates an in-memory Redis client and lets
// the test populate or inspect the server
func CreateTestRedisClientWithContext(t *testing.T, setupFunc func(mr *miniredis.Miniredis)) (redis.Client, func()) {
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to create miniredis")

	if setupFunc != nil {
		setupFunc(mr)
	}

	client, err := redis.NewClient(mr.Addr(), nil)
	require.NoError(t, err, "failed to create redis client")

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}

	return client, cleanup
}
