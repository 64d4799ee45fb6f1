package menu

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/spendlog/internal/ledger"
)

// ErrNotFound reports a token that never existed, was already resolved,
// or was evicted. It is the normal "selection expired" outcome, not a
// failure.
var ErrNotFound = errors.New("selection not found or expired")

// Choice is the payload offered behind one menu button.
type Choice struct {
	Category string
	Amount   ledger.Amount
	Note     string
}

// Option pairs a generated token with its choice for presentation.
type Option struct {
	Token  string
	Choice Choice
}

// entry is one live cache slot.
type entry struct {
	menuID    uuid.UUID
	choice    Choice
	createdAt time.Time
}

// Cache is the shared token -> pending choice map.
//
// Open, Resolve and Sweep all mutate the map under the same mutex; that
// single serialization point is what makes "resolve removes all menu
// siblings" and "sweep never evicts mid-resolve" both hold. No I/O
// happens while the lock is held.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	// now stamps entries for TTL eviction. time.Time carries a
	// monotonic reading, so ages are immune to wall-clock jumps.
	// Defaults to time.Now; overridden in tests.
	now func() time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Open registers a new menu: one fresh random token per choice, all
// sharing a new menu id, inserted atomically. Returns the tokens paired
// with their choices in input order.
func (c *Cache) Open(choices []Choice) []Option {
	menuID := uuid.New()
	options := make([]Option, 0, len(choices))

	c.mu.Lock()
	defer c.mu.Unlock()

	createdAt := c.now()
	for _, choice := range choices {
		token := uuid.NewString()
		c.entries[token] = entry{
			menuID:    menuID,
			choice:    choice,
			createdAt: createdAt,
		}
		options = append(options, Option{Token: token, Choice: choice})
	}

	return options
}

// Resolve consumes a token. On success it removes the whole menu the
// token belongs to - the resolved entry and every sibling - and returns
// the resolved choice. A missing token returns ErrNotFound.
//
// The lookup, sibling removal and return happen in one critical
// section: two concurrent resolves racing on tokens from the same menu
// cannot both succeed.
func (c *Cache) Resolve(token string) (Choice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[token]
	if !ok {
		return Choice{}, ErrNotFound
	}

	for t, other := range c.entries {
		if other.menuID == e.menuID {
			delete(c.entries, t)
		}
	}

	return e.choice, nil
}

// Sweep removes every entry whose age is at least ttl and returns the
// number removed. Safe to run concurrently with Open and Resolve; it
// only ever removes, so it cannot invalidate a resolve in progress.
func (c *Cache) Sweep(ttl time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for token, e := range c.entries {
		if now.Sub(e.createdAt) >= ttl {
			delete(c.entries, token)
			removed++
		}
	}

	return removed
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
