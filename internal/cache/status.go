// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// status.go provides a Valkey-backed cache of the most recent post record.
// The status endpoint is polled far more often than cycles run, so serving
// the latest record from Valkey keeps those reads off PostgreSQL. The
// scheduler refreshes the entry after every cycle.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"pulsepost/internal/models"
)

const (
	// latestKey is the Valkey key for the most recent post record.
	latestKey = "status:latest"

	// DefaultStatusTTL bounds staleness if an invalidation is ever missed.
	DefaultStatusTTL = time.Hour
)

// StatusCache caches the latest post record in Valkey. A nil *StatusCache
// is valid and behaves as a cache that always misses, so the daemon runs
// without Valkey.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusCache creates a status cache backed by the given Valkey client.
func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	if ttl == 0 {
		ttl = DefaultStatusTTL
	}
	return &StatusCache{client: client, ttl: ttl}
}

// Latest returns the cached most-recent record, or (nil, false) on miss.
func (c *StatusCache) Latest(ctx context.Context) (*models.PostRecord, bool) {
	if c == nil {
		return nil, false
	}

	val, err := c.client.Get(ctx, latestKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("status cache get error", "error", err)
		return nil, false
	}

	var rec models.PostRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		slog.Warn("status cache decode error", "error", err)
		return nil, false
	}
	return &rec, true
}

// SetLatest stores the most recent record with the configured TTL.
func (c *StatusCache) SetLatest(ctx context.Context, rec models.PostRecord) {
	if c == nil {
		return
	}

	val, err := json.Marshal(rec)
	if err != nil {
		slog.Warn("status cache encode error", "error", err)
		return
	}
	if err := c.client.Set(ctx, latestKey, val, c.ttl).Err(); err != nil {
		slog.Warn("status cache set error", "error", err)
	}
}

// Invalidate drops the cached record, e.g. after the history is cleared.
func (c *StatusCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, latestKey).Err(); err != nil {
		slog.Warn("status cache invalidate error", "error", err)
	}
}
