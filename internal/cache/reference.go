package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rewind-bknd/internal/metrics"
	"rewind-bknd/internal/models"
	"rewind-bknd/internal/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "rewind:ref:"

// Connect parses a redis URL and checks the server answers.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.MaxRetries = 1

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// ReferenceCache is a read-through redis cache in front of a ReferenceStore.
// The reference tables change only when they are reseeded, so whole tables are
// cached and filtered in memory. A redis outage degrades to direct store reads.
type ReferenceCache struct {
	store  services.ReferenceStore
	client *redis.Client
	ttl    time.Duration
	logr   *zap.Logger
}

var _ services.ReferenceStore = (*ReferenceCache)(nil)

func NewReferenceCache(store services.ReferenceStore, client *redis.Client, ttl time.Duration, logr *zap.Logger) *ReferenceCache {
	return &ReferenceCache{store: store, client: client, ttl: ttl, logr: logr}
}

func (c *ReferenceCache) ListWireSpecifications(ctx context.Context, order models.WireOrder) ([]models.WireSpecification, error) {
	if order != models.WireOrderSection {
		order = models.WireOrderDiameter
	}
	return readThrough(ctx, c, wiresKey(order), "wires", func(ctx context.Context) ([]models.WireSpecification, error) {
		return c.store.ListWireSpecifications(ctx, order)
	})
}

func (c *ReferenceCache) FindWiresMinSection(ctx context.Context, minSection float64, limit int) ([]models.WireSpecification, error) {
	wires, err := c.ListWireSpecifications(ctx, models.WireOrderSection)
	if err != nil {
		return nil, err
	}
	out := make([]models.WireSpecification, 0, limit)
	for _, w := range wires {
		if w.SectionMM2 < minSection {
			continue
		}
		out = append(out, w)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (c *ReferenceCache) ListWindingFactors(ctx context.Context) ([]models.WindingFactor, error) {
	return readThrough(ctx, c, keyPrefix+"winding_factors", "winding_factors", c.store.ListWindingFactors)
}

// Invalidate drops every cached reference table.
func (c *ReferenceCache) Invalidate(ctx context.Context) error {
	keys := []string{
		wiresKey(models.WireOrderDiameter),
		wiresKey(models.WireOrderSection),
		keyPrefix + "winding_factors",
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate reference cache: %w", err)
	}
	return nil
}

func wiresKey(order models.WireOrder) string {
	return keyPrefix + "wires:" + string(order)
}

func readThrough[T any](ctx context.Context, c *ReferenceCache, key, table string, load func(context.Context) ([]T, error)) ([]T, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			metrics.IncReferenceCache(table, metrics.CacheHit)
			return cached, nil
		}
		c.logr.Warn("discarding unreadable reference cache entry", zap.String("key", key))
		metrics.IncReferenceCache(table, metrics.CacheError)
	case errors.Is(err, redis.Nil):
		metrics.IncReferenceCache(table, metrics.CacheMiss)
	default:
		c.logr.Warn("reference cache read failed", zap.String("key", key), zap.Error(err))
		metrics.IncReferenceCache(table, metrics.CacheError)
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		c.logr.Warn("reference cache encode failed", zap.String("key", key), zap.Error(err))
		return rows, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logr.Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
	}
	return rows, nil
}
