package upload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/photoupload/internal/models"
)

func TestConfig_ResolveDefaults(t *testing.T) {
	o := DefaultConfig().resolve("user-1", nil)

	assert.Equal(t, "profile-photos", o.Bucket)
	assert.Equal(t, "user-1", o.PathPrefix)
	assert.Equal(t, 6, o.Max)
	assert.Equal(t, 2, o.Retries)
	assert.Equal(t, 500*time.Millisecond, o.Backoff)
	assert.Equal(t, 1, o.Concurrency)
	assert.Equal(t, 60*time.Second, o.Timeout)
	assert.True(t, o.OfflineQueue)
	assert.Nil(t, o.Resize)
}

func TestConfig_ResolveClampsAndOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPerBatch = 4

	o := cfg.resolve("u", []Option{
		WithMax(10),
		WithConcurrency(-3),
		WithRetries(-1),
		WithBackoff(-time.Second),
		WithBucket("other"),
		WithPathPrefix("//"),
		WithResize(models.ResizeSpec{MaxWidth: 10}),
		WithOfflineQueue(false),
	})

	assert.Equal(t, 4, o.Max)
	assert.Equal(t, 1, o.Concurrency)
	assert.Zero(t, o.Retries)
	assert.Zero(t, o.Backoff)
	assert.Equal(t, "other", o.Bucket)
	assert.Equal(t, "u", o.PathPrefix)
	assert.Equal(t, 10, o.Resize.MaxWidth)
	assert.False(t, o.OfflineQueue)
}

func TestConfig_ResolveZeroMaxPerBatch(t *testing.T) {
	o := Config{}.resolve("u", nil)
	assert.Equal(t, 6, o.Max)
	assert.Equal(t, 1, o.Concurrency)
}
