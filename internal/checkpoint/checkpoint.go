// Package checkpoint implements the optional Redis-backed run checkpoint cache
// (§4.12): lets a scheduler skip timestamps whose result rows were already
// written by a prior, interrupted run of the same manifest. URL parsing, pool
// sizing, and key-prefix conventions follow the usual Redis repository
// wiring, generalized to one per-run namespace.
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jakartapm25/kelurahan-engine/internal/logging"
	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

const keyTTL = 7 * 24 * time.Hour

// Cache is a best-effort checkpoint store; every method degrades to a cache
// miss on error rather than failing the run, since checkpointing is an
// optimization, not part of the correctness-critical path.
type Cache struct {
	client *redis.Client
	logger *logging.Logger
}

// New connects to the Redis instance at url. A connection or ping failure is
// returned so callers can choose to run without a cache.
func New(url string, logger *logging.Logger) (*Cache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{client: client, logger: logger}, nil
}

func key(manifestHash string, timestampMs int64) string {
	return fmt.Sprintf("pm25engine:checkpoint:%s:%d", manifestHash, timestampMs)
}

// entry is the full per-timestamp checkpoint payload. DistanceRows is empty for
// the overwhelming majority of timestamps (only the three representative ones
// ever carry distance rows), but it travels with the result rows in the same
// key so a cache hit never has to recompute the distance report separately —
// the two are written and read as one atomic unit.
type entry struct {
	Rows         []models.ResultRow
	DistanceRows []models.DistanceRow `json:",omitempty"`
}

// Get returns the cached result rows and distance rows for a timestamp, if present.
func (c *Cache) Get(ctx context.Context, manifestHash string, timestampMs int64) ([]models.ResultRow, []models.DistanceRow, bool) {
	raw, err := c.client.Get(ctx, key(manifestHash, timestampMs)).Bytes()
	if err != nil {
		return nil, nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.WithField("error", err).Warn("discarding malformed checkpoint entry")
		return nil, nil, false
	}
	return e.Rows, e.DistanceRows, true
}

// Put stores the result rows and (when non-empty) distance rows for a
// timestamp, best-effort.
func (c *Cache) Put(ctx context.Context, manifestHash string, timestampMs int64, rows []models.ResultRow, distRows []models.DistanceRow) {
	raw, err := json.Marshal(entry{Rows: rows, DistanceRows: distRows})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(manifestHash, timestampMs), raw, keyTTL).Err(); err != nil {
		c.logger.WithField("error", err).Debug("checkpoint write failed, continuing without it")
	}
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}
