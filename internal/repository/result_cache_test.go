package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

func TestCacheKeyStable(t *testing.T) {
	labels := domain.NewLabelSet([]string{"A", "B"}, []string{"X"})
	ticket := domain.Ticket{Priority: "A", Category: "X", Comment: "leak"}

	k1 := CacheKey("m", labels, ticket)
	k2 := CacheKey("m", labels, domain.Ticket{ID: 99, Priority: "A", Category: "X", Comment: "  leak "})
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 64)

	assert.NotEqual(t, k1, CacheKey("other", labels, ticket))
	assert.NotEqual(t, k1, CacheKey("m", labels, domain.Ticket{Priority: "B", Category: "X", Comment: "leak"}))
	assert.NotEqual(t, k1, CacheKey("m", domain.NewLabelSet([]string{"A"}, []string{"X"}), ticket))
}

func TestNilClientCacheAlwaysMisses(t *testing.T) {
	cache := NewResultCache(nil, "p:", 0)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", domain.TriageResult{Priority: "A"}))
	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNilPoolAuditDiscards(t *testing.T) {
	repo := NewAuditRepository(nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.AuditEntry{RequestID: "r"}))
	entries, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRedisResultCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	prefix := "retriage-test:" + uuid.NewString() + ":"
	cache := NewResultCache(client, prefix, time.Minute)

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	want := domain.TriageResult{
		TicketID:        3,
		Priority:        "02-Urgent",
		Category:        "Plumbing",
		ResidentMessage: "Please turn off the valve under your sink.",
		Source:          domain.TriageSourceModel,
		Fallbacks:       []domain.TriageField{domain.FieldCategory},
	}
	require.NoError(t, cache.Set(ctx, "k", want))
	t.Cleanup(func() { client.Del(context.Background(), prefix+"k") })

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	ttl, err := client.TTL(ctx, prefix+"k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}
