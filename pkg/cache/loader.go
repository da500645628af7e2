// Package cache provides a keyed stale-while-revalidate loader. A value
// inside its fresh TTL is served directly; past the TTL but inside the stale
// window it is served immediately while a background refresh runs; past the
// stale window the caller blocks on a fetch. All fetches for the same key are
// single-flighted.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the value for a key on a cache miss or refresh.
type Fetcher[T any] func(ctx context.Context) (T, error)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

type Loader[T any] struct {
	freshFor time.Duration
	staleFor time.Duration
	logger   *zap.Logger

	flight  singleflight.Group
	mu      sync.RWMutex
	entries map[string]entry[T]

	now func() time.Time
}

// NewLoader builds a loader serving values as fresh for freshFor and as
// stale-but-servable until staleFor after the fetch that produced them.
func NewLoader[T any](freshFor, staleFor time.Duration, logger *zap.Logger) *Loader[T] {
	return &Loader[T]{
		freshFor: freshFor,
		staleFor: staleFor,
		logger:   logger,
		entries:  make(map[string]entry[T]),
		now:      time.Now,
	}
}

// Get returns the value for key, fetching it if needed. A fetch failure
// never evicts a previously cached value.
func (l *Loader[T]) Get(ctx context.Context, key string, fetch Fetcher[T]) (T, error) {
	cached, found := l.lookup(key)
	age := l.now().Sub(cached.fetchedAt)

	if found && age <= l.freshFor {
		return cached.value, nil
	}

	if found && age <= l.staleFor {
		l.refresh(ctx, key, fetch)

		return cached.value, nil
	}

	value, err, _ := l.flight.Do(key, func() (interface{}, error) {
		fetched, fetchErr := fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}

		l.store(key, fetched)

		return fetched, nil
	})
	if err != nil {
		var zero T

		return zero, err
	}

	return value.(T), nil //nolint:forcetypeassert // the flight only ever stores T
}

// refresh revalidates key without blocking the caller. The fetch runs on a
// context detached from the request so an abandoned caller does not cancel
// it, and concurrent stale hits collapse into one flight.
func (l *Loader[T]) refresh(ctx context.Context, key string, fetch Fetcher[T]) {
	detached := context.WithoutCancel(ctx)

	results := l.flight.DoChan(key, func() (interface{}, error) {
		fetched, err := fetch(detached)
		if err != nil {
			return nil, err
		}

		l.store(key, fetched)

		return fetched, nil
	})

	go func() {
		result := <-results
		if result.Err != nil {
			l.logger.Warn("background cache refresh failed, keeping stale value",
				zap.String("key", key), zap.Error(result.Err))
		}
	}()
}

func (l *Loader[T]) lookup(key string) (entry[T], bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cached, found := l.entries[key]

	return cached, found
}

func (l *Loader[T]) store(key string, value T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[key] = entry[T]{value: value, fetchedAt: l.now()}
}
