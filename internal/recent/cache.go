// Package recent keeps the most recently selected palette items.
package recent

import (
	"encoding/json"
	"errors"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"cmdpalette/internal/domain"
)

// KeyPrefix is prepended to the palette instance id to form the store key
const KeyPrefix = "cmdpalette-recent-"

// Resolver maps a stored item back to a live one, e.g. to re-bind an invoke
// action to its callback. Returning false drops the item.
type Resolver func(domain.Item) (domain.Item, bool)

// Cache is a bounded most-recently-used list of items. A capacity of zero
// disables it entirely: nothing is read from or written to the store.
// A Cache is not safe for concurrent use.
type Cache struct {
	key      string
	capacity int
	store    Store
	logger   *log.Logger
	resolve  Resolver

	entries *lru.Cache[domain.ItemKey, domain.Item]
	loaded  bool
}

// Option configures a Cache
type Option func(*Cache)

// WithResolver sets the function applied to items restored from the store
func WithResolver(r Resolver) Option {
	return func(c *Cache) {
		c.resolve = r
	}
}

// New creates a cache for the palette instance id
func New(instanceID string, capacity int, store Store, logger *log.Logger, opts ...Option) *Cache {
	if capacity < 0 {
		capacity = 0
	}
	if logger == nil {
		logger = log.Default()
	}
	c := &Cache{
		key:      KeyPrefix + instanceID,
		capacity: capacity,
		store:    store,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if capacity > 0 {
		// only fails for a non-positive size
		c.entries, _ = lru.New[domain.ItemKey, domain.Item](capacity)
	}
	return c
}

// Enabled reports whether the cache keeps anything
func (c *Cache) Enabled() bool {
	return c.capacity > 0
}

// Key returns the store key used by this cache
func (c *Cache) Key() string {
	return c.key
}

// Capacity returns the maximum number of entries
func (c *Cache) Capacity() int {
	return c.capacity
}

// Get returns the entries, most recent first
func (c *Cache) Get() []domain.Item {
	if !c.Enabled() {
		return nil
	}
	c.load()

	values := c.entries.Values() // oldest first
	out := make([]domain.Item, len(values))
	for i, v := range values {
		out[len(values)-1-i] = v
	}
	return out
}

// Add moves item to the front, evicting the oldest entry beyond capacity,
// and persists the list. Store failures are logged and otherwise ignored.
func (c *Cache) Add(item domain.Item) {
	if !c.Enabled() {
		return
	}
	c.load()

	c.entries.Add(item.Key(), item)
	c.save()
}

// Clear empties the list and the stored copy
func (c *Cache) Clear() {
	if !c.Enabled() {
		return
	}
	c.entries.Purge()
	c.loaded = true
	if c.store == nil {
		return
	}
	if err := c.store.Delete(c.key); err != nil && !errors.Is(err, ErrNotFound) {
		c.logger.Error("Failed to clear recent items", "key", c.key, "err", err)
	}
}

func (c *Cache) load() {
	if c.loaded {
		return
	}
	c.loaded = true
	if c.store == nil {
		return
	}

	data, err := c.store.Get(c.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Error("Failed to read recent items", "key", c.key, "err", err)
		}
		return
	}

	var stored []domain.Item
	if err := json.Unmarshal(data, &stored); err != nil {
		c.logger.Error("Failed to decode recent items", "key", c.key, "err", err)
		return
	}

	var items []domain.Item
	for _, item := range stored {
		if c.resolve != nil {
			resolved, ok := c.resolve(item)
			if !ok {
				c.logger.Debug("Dropping stale recent item", "name", item.Name)
				continue
			}
			item = resolved
		}
		items = append(items, item)
		if len(items) == c.capacity {
			break
		}
	}

	// oldest first so the newest ends up at the front
	for i := len(items) - 1; i >= 0; i-- {
		c.entries.Add(items[i].Key(), items[i])
	}
}

func (c *Cache) save() {
	if c.store == nil {
		return
	}
	data, err := json.Marshal(c.Get())
	if err != nil {
		c.logger.Error("Failed to encode recent items", "err", err)
		return
	}
	if err := c.store.Set(c.key, data); err != nil {
		c.logger.Error("Failed to write recent items", "key", c.key, "err", err)
	}
}

// Merge lists the recent items first, then a separator, then the regular
// items that are not already among the recent ones. The separator only
// appears when both halves are non-empty.
func Merge(recent, regular []domain.Item) []domain.Entry {
	seen := make(map[domain.ItemKey]bool, len(recent))
	out := make([]domain.Entry, 0, len(recent)+len(regular)+1)
	for _, item := range recent {
		seen[item.Key()] = true
		out = append(out, domain.ItemEntry(item))
	}

	rest := make([]domain.Entry, 0, len(regular))
	for _, item := range regular {
		if seen[item.Key()] {
			continue
		}
		rest = append(rest, domain.ItemEntry(item))
	}

	if len(out) > 0 && len(rest) > 0 {
		out = append(out, domain.SeparatorEntry())
	}
	return append(out, rest...)
}
