package invalidation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestBuildKeyEmbedsScopeVersions(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key1, err := cache.BuildKey(ctx, []string{ScopeViajes}, "viajes", "list")
	require.NoError(t, err)
	assert.Equal(t, "viajes:list:v1", key1)

	require.NoError(t, cache.Bump(ctx, ScopeViajes))

	key2, err := cache.BuildKey(ctx, []string{ScopeViajes}, "viajes", "list")
	require.NoError(t, err)
	assert.Equal(t, "viajes:list:v2", key2)
	assert.NotEqual(t, key1, key2)
}

func TestBumpOnlyTouchesNamedScopes(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, []string{ScopeTransacciones}, "transacciones", "list")
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx, ScopeViajes))

	after, err := cache.BuildKey(ctx, []string{ScopeTransacciones}, "transacciones", "list")
	require.NoError(t, err)
	assert.Equal(t, before, after, "unrelated scope must keep its version")
}

func TestFetchJSONPopulatesAndHits(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]int{"n": 42}, nil
	}

	var first map[string]int
	require.NoError(t, cache.FetchJSON(ctx, "k", &first, loader))
	assert.Equal(t, 42, first["n"])
	assert.Equal(t, 1, calls)

	var second map[string]int
	require.NoError(t, cache.FetchJSON(ctx, "k", &second, loader))
	assert.Equal(t, 42, second["n"])
	assert.Equal(t, 1, calls, "second fetch must come from cache")
}

func TestFetchJSONNilClientPassesThrough(t *testing.T) {
	cache := NewCache(nil, time.Minute)

	calls := 0
	var out map[string]int
	for i := 0; i < 2; i++ {
		require.NoError(t, cache.FetchJSON(context.Background(), "k", &out, func(ctx context.Context) (interface{}, error) {
			calls++
			return map[string]int{"n": calls}, nil
		}))
	}
	assert.Equal(t, 2, calls, "nil client must always hit the loader")
}

func TestBumpPublishesScopes(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []string, 1)
	require.NoError(t, cache.ListenForInvalidation(ctx, func(scopes []string) {
		got <- scopes
	}))
	// Subscription setup races the publish without a small pause.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, cache.Bump(ctx, ScopeViajes, ScopeSaldos("mina")))

	select {
	case scopes := <-got:
		assert.Equal(t, []string{ScopeViajes, ScopeSaldos("mina")}, scopes)
	case <-time.After(2 * time.Second):
		t.Fatal("no bump notification received")
	}
}

func TestDedupe(t *testing.T) {
	out := Dedupe([]string{"b", "a", "b", "", "a"})
	assert.Equal(t, []string{"a", "b"}, out)
}
