// Package cache keeps read-through copies of public listings. Entries only
// expire; nothing invalidates them on writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mk3hierros/internal/metrics"
)

var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}

const (
	KeyFinishedWorks = "mk3:works:finished"
)

func KeyWorksByCategory(categoryID int64) string {
	return fmt.Sprintf("mk3:works:category:%d", categoryID)
}

func KeyWork(id int64) string {
	return fmt.Sprintf("mk3:work:%d", id)
}

// GetOrFetch returns the cached value for key or calls fetch and stores its
// result for ttl. Fetch errors are returned and never cached. A broken cache
// degrades to calling fetch every time.
func GetOrFetch[T any](ctx context.Context, c Cache, log zerolog.Logger, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	if raw, err := c.Get(ctx, key); err == nil {
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			metrics.RecordCacheLookup(true)
			return value, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	} else if !errors.Is(err, ErrMiss) {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	metrics.RecordCacheLookup(false)
	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return value, nil
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return value, nil
}

