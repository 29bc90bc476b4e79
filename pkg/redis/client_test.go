package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandibazaar/mandi-backend/pkg/config"
)

func TestBuildKeySkipsEmptyParts(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "mandi:lock:settlement", c.LockKey("settlement"))
	assert.Equal(t, "mandi:counter:sweeps", c.CounterKey("sweeps"))
	assert.Equal(t, "mandi:rate_limit:orders", c.RateLimitKey("orders"))
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)
}

func TestOptionsFromConfigUsesAddress(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		Address:      "localhost:6379",
		Password:     "hunter2",
		DB:           2,
		PoolSize:     5,
		MinIdleConns: 1,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 5, opts.PoolSize)
}
