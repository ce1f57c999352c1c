package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	IDs []int64 `json:"ids"`
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenCache) Ping(context.Context) error { return errors.New("connection refused") }

func TestGetOrFetchCachesUntilExpiry(t *testing.T) {
	now := time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	calls := 0
	fetch := func(context.Context) (listing, error) {
		calls++
		return listing{IDs: []int64{int64(calls)}}, nil
	}
	ctx := context.Background()

	first, err := GetOrFetch(ctx, c, zerolog.Nop(), KeyFinishedWorks, time.Hour, fetch)
	require.NoError(t, err)
	second, err := GetOrFetch(ctx, c, zerolog.Nop(), KeyFinishedWorks, time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	now = now.Add(time.Hour)
	third, err := GetOrFetch(ctx, c, zerolog.Nop(), KeyFinishedWorks, time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, third.IDs)
	assert.Equal(t, 2, calls)
}

func TestGetOrFetchDoesNotCacheErrors(t *testing.T) {
	c := NewMemoryCache()
	calls := 0
	fetch := func(context.Context) (listing, error) {
		calls++
		if calls == 1 {
			return listing{}, errors.New("db down")
		}
		return listing{IDs: []int64{9}}, nil
	}

	_, err := GetOrFetch(context.Background(), c, zerolog.Nop(), KeyWork(9), time.Hour, fetch)
	require.Error(t, err)

	got, err := GetOrFetch(context.Background(), c, zerolog.Nop(), KeyWork(9), time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, got.IDs)
	assert.Equal(t, 2, calls)
}

func TestGetOrFetchSurvivesBrokenCache(t *testing.T) {
	got, err := GetOrFetch(context.Background(), brokenCache{}, zerolog.Nop(), KeyWorksByCategory(2), time.Hour,
		func(context.Context) (listing, error) { return listing{IDs: []int64{1, 2}}, nil })
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, got.IDs)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "mk3:works:category:4", KeyWorksByCategory(4))
	assert.Equal(t, "mk3:work:12", KeyWork(12))
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	c := NewMemoryCache()
	value := []byte("abc")
	require.NoError(t, c.Set(context.Background(), "k", value, 0))
	value[0] = 'z'

	got, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	_, err = c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMiss)
}
