// Package middleware provides the HTTP middleware for the reservation
// service: a Redis-backed occupancy response cache and a request rate
// limiter.  Both are no-ops without a Redis client so the service
// keeps working when Redis is down.
package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/bus-seat-reservation/internal/config"
)

// OccupancyCache caches occupancy JSON bodies in Redis, keyed by slot.
// Occupancy is recomputed from the store on every engine call, so the
// cache only exists to absorb repeated renders of the same slot;
// Invalidate must be called after any mutation of a slot to keep
// in-process reads exact.
type OccupancyCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewOccupancyCache builds the cache.  A nil Redis client yields a
// cache whose middleware passes every request through.
func NewOccupancyCache(cfg config.CacheConfig, rdb *redis.Client) *OccupancyCache {
	return &OccupancyCache{cfg: cfg, rdb: rdb}
}

func (oc *OccupancyCache) enabled() bool {
	return oc != nil && oc.cfg.Enabled && oc.rdb != nil
}

func (oc *OccupancyCache) key(date, departure string) string {
	return fmt.Sprintf("%s:%s:%s", oc.cfg.Prefix, date, departure)
}

// Middleware serves cached occupancy bodies and captures fresh ones.
// Requests without both slot parameters skip the cache; the handler
// rejects them anyway.
func (oc *OccupancyCache) Middleware() echo.MiddlewareFunc {
	if !oc.enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			date := c.QueryParam("date")
			departure := c.QueryParam("time")
			if date == "" || departure == "" {
				return next(c)
			}
			ctx := c.Request().Context()
			key := oc.key(date, departure)
			if body, err := oc.rdb.Get(ctx, key).Bytes(); err == nil && len(body) > 0 {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}
			cw := &bodyCapture{ResponseWriter: c.Response().Writer}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status == http.StatusOK {
				_ = oc.rdb.Set(context.Background(), key, cw.buf.Bytes(), oc.cfg.TTL).Err()
			}
			return nil
		}
	}
}

// Invalidate drops the cached occupancy for one slot.  Safe to call on
// a nil or disabled cache.
func (oc *OccupancyCache) Invalidate(ctx context.Context, date, departure string) {
	if !oc.enabled() {
		return
	}
	_ = oc.rdb.Del(ctx, oc.key(date, departure)).Err()
}

// bodyCapture duplicates the response body while forwarding it to the
// client.
type bodyCapture struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
