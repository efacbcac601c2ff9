// Package cache stores check reports in Redis. Entries are scoped by a
// corpus revision counter, so bumping the revision invalidates every cached
// report at once without scanning keys.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/RishiKendai/overlap/internal/models"
	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

const (
	revisionKey = "overlap:corpus:revision"
	reportKey   = "overlap:report:"
)

// Key identifies one cacheable check. Revision is the corpus revision read
// before the corpus snapshot was taken; it is not part of Hash.
type Key struct {
	Revision    int64
	Algorithm   string
	ShingleSize int
	Text        string
}

// Hash folds the key into a 64-bit digest.
func (k Key) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(k.Algorithm)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.Itoa(k.ShingleSize))
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(k.Text)
	return d.Sum64()
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Revision returns the current corpus revision, 0 if never bumped.
func (c *Cache) Revision(ctx context.Context) (int64, error) {
	rev, err := c.client.Get(ctx, revisionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read corpus revision: %w", err)
	}
	return rev, nil
}

// BumpRevision is called after every corpus change.
func (c *Cache) BumpRevision(ctx context.Context) error {
	if err := c.client.Incr(ctx, revisionKey).Err(); err != nil {
		return fmt.Errorf("failed to bump corpus revision: %w", err)
	}
	return nil
}

// Lookup returns the cached report for k, or nil on a miss.
func (c *Cache) Lookup(ctx context.Context, k Key) (*models.Report, error) {
	data, err := c.client.Get(ctx, FormatKey(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &report, nil
}

// Store files report under k.Revision, never the current revision, so a
// report scored before a corpus change is unreachable after it.
func (c *Cache) Store(ctx context.Context, k Key, report *models.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.client.Set(ctx, FormatKey(k), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// FormatKey renders the Redis key of k.
func FormatKey(k Key) string {
	return fmt.Sprintf("%s%d:%016x", reportKey, k.Revision, k.Hash())
}
