package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

// ResultCache stores re-triage results keyed by ticket content.
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.TriageResult, error)
	Set(ctx context.Context, key string, result domain.TriageResult) error
}

// ErrCacheMiss is returned by Get when no entry exists.
var ErrCacheMiss = errors.New("cache miss")

type resultCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewResultCache builds a Redis backed cache. A nil client yields a cache that always misses.
func NewResultCache(client *redis.Client, prefix string, ttl time.Duration) ResultCache {
	if client == nil {
		return noopCache{}
	}
	return &resultCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *resultCache) Get(ctx context.Context, key string) (*domain.TriageResult, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var result domain.TriageResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *resultCache) Set(ctx context.Context, key string, result domain.TriageResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err()
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.TriageResult, error) { return nil, ErrCacheMiss }

func (noopCache) Set(context.Context, string, domain.TriageResult) error { return nil }

// CacheKey derives a stable key from the model, the label vocabularies and the ticket content.
func CacheKey(model string, labels domain.LabelSet, ticket domain.Ticket) string {
	h := sha256.New()
	for _, part := range []string{
		model,
		strings.Join(labels.Priorities, "\x1f"),
		strings.Join(labels.Categories, "\x1f"),
		ticket.Priority,
		ticket.Category,
		strings.TrimSpace(ticket.Comment),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
