package menu

import (
	"context"
	"log/slog"
	"time"
)

// Janitor bounds memory growth from abandoned menus by sweeping the
// cache on a fixed period. The period is independent of the TTL.
type Janitor struct {
	cache *Cache
	ttl   time.Duration
	every time.Duration
}

// NewJanitor creates a janitor sweeping cache every `every` with the
// given entry TTL.
func NewJanitor(cache *Cache, ttl, every time.Duration) *Janitor {
	return &Janitor{cache: cache, ttl: ttl, every: every}
}

// Run loops until the context is cancelled: sleep, sweep, repeat.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("janitor stopping: context cancelled")
			return
		case <-ticker.C:
			if removed := j.cache.Sweep(j.ttl); removed > 0 {
				slog.Debug("swept expired menu entries", "removed", removed)
			}
		}
	}
}
