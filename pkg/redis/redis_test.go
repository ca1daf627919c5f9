package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Options(t *testing.T) {
	cfg := Config{URL: "redis://localhost:6379/2", PoolSize: 4, ReadTimeout: time.Second, WriteTimeout: 2 * time.Second, DialTimeout: 4 * time.Second}
	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 4, opts.PoolSize)
	assert.Equal(t, time.Second, opts.ReadTimeout)
	assert.Equal(t, 2*time.Second, opts.WriteTimeout)
	assert.Equal(t, 4*time.Second, opts.DialTimeout)

	_, err = (&Config{URL: "://nope"}).Options()
	assert.Error(t, err)
}

func TestConfig_OptionsKeepsDefaults(t *testing.T) {
	opts, err := (&Config{URL: "redis://localhost:6379"}).Options()
	require.NoError(t, err)
	assert.Zero(t, opts.PoolSize)
	assert.Zero(t, opts.ReadTimeout)
}

func TestConfig_New(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := Config{URL: "redis://" + mr.Addr(), DialTimeout: time.Second}

	client, err := cfg.New(context.Background())
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())

	mr.Close()
	_, err = cfg.New(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}
