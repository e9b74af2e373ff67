package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"procurement-backend/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ReportCache keeps serialized report payloads in Redis. A nil *ReportCache
// or a zero TTL disables caching.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return &ReportCache{rdb: rdb, ttl: ttl}
}

func (c *ReportCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ReportCache) Set(ctx context.Context, key string, obj any) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

// Invalidate drops the cached report so the next read rebuilds it.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, reportCacheKey).Err()
}

type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// InvalidateReportsOnWrite clears the cached report after every successful
// write request. Reads pass straight through.
func InvalidateReportsOnWrite(inv ReportInvalidator, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		err := c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			return err
		}
		if ierr := inv.Invalidate(c.UserContext()); ierr != nil {
			logging.LogError(logger, "dashboard", "InvalidateReportsOnWrite", c.Path(), nil, ierr)
		}
		return nil
	}
}
