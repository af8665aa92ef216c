package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string    `json:"name"`
	Items []float64 `json:"items"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	in := payload{Name: "a", Items: []float64{1, 2}}
	require.NoError(t, mc.Set(ctx, "k", in, time.Minute))
	in.Items[0] = 99

	var out payload
	require.NoError(t, mc.Get(ctx, "k", &out))
	assert.Equal(t, payload{Name: "a", Items: []float64{1, 2}}, out)

	var s string
	require.NoError(t, mc.Set(ctx, "s", "raw", 0))
	require.NoError(t, mc.Get(ctx, "s", &s))
	assert.Equal(t, "raw", s)
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var out payload
	assert.ErrorIs(t, mc.Get(ctx, "nope", &out), ErrCacheMiss)

	require.NoError(t, mc.Set(ctx, "k", payload{}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	assert.ErrorIs(t, mc.Get(ctx, "k", &out), ErrCacheMiss)
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	for _, k := range []string{"projection:1:a", "projection:1:b", "projection:12:a"} {
		require.NoError(t, mc.Set(ctx, k, "v", time.Minute))
	}
	require.NoError(t, mc.DeleteByPattern(ctx, BuildPattern("projection:1:")))
	assert.Equal(t, 1, mc.Len())

	var s string
	assert.NoError(t, mc.Get(ctx, "projection:12:a", &s))
}

func TestMemoryCacheEvictsWhenFull(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, mc.Set(ctx, "b", "2", time.Minute))
	require.NoError(t, mc.Set(ctx, "c", "3", time.Minute))
	assert.Equal(t, 2, mc.Len())

	var s string
	assert.NoError(t, mc.Get(ctx, "c", &s))
}

func TestGenerateKeyWithParams(t *testing.T) {
	assert.Equal(t, "projection:7:6:11", GenerateKeyWithParams("projection", 7, 6, 11))
	assert.Len(t, HashKey([]byte("x")), 32)
}
