// Package cache holds the Redis-backed readiness report cache. Reports are
// immutable for a given (dossier, version) pair, which makes them the ideal
// cache entry: a committed mutation bumps the version and naturally misses.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"grantflow/internal/dossier/models"
	id "grantflow/pkg/domain"
)

// ReportCache stores generated readiness reports keyed by dossier id and
// aggregate version. Cache failures are never fatal; callers fall back to
// regenerating the report.
type ReportCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// New creates a report cache with the given TTL. The TTL only bounds
// staleness against reference-data changes (call budget bounds); dossier
// changes invalidate by key.
func New(client redis.Cmdable, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func key(dossierID id.DossierID, version int64) string {
	return fmt.Sprintf("grantflow:report:%s:%d", dossierID, version)
}

// Get returns the cached report for the exact dossier version, or ok=false
// on a miss or any cache error.
func (c *ReportCache) Get(ctx context.Context, dossierID id.DossierID, version int64) (models.Report, bool) {
	raw, err := c.client.Get(ctx, key(dossierID, version)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// Treat infrastructure errors the same as misses.
			return models.Report{}, false
		}
		return models.Report{}, false
	}
	var report models.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return models.Report{}, false
	}
	return report, true
}

// Set stores a report under its dossier version. Errors are swallowed; the
// cache is an optimization, not a dependency.
func (c *ReportCache) Set(ctx context.Context, report models.Report) {
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	c.client.Set(ctx, key(report.DossierID, report.Version), raw, c.ttl)
}
