package cache

import (
	"container/list"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultCapacity            = 10000
	DefaultIdleTimeout         = 12 * time.Hour
	DefaultInitialCapacityHint = 1000
)

// Options configures a Cache. Zero values fall back to the package defaults.
type Options struct {
	Capacity            int
	IdleTimeout         time.Duration
	InitialCapacityHint int

	// Now is the clock used to stamp entries. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	lastAccess time.Time
}

// Cache is a capacity-bounded LRU map with sliding idle expiry.
// It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu          sync.Mutex
	capacity    int
	idleTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger

	items map[K]*list.Element
	order *list.List // front = most recently accessed
}

// New returns an empty cache configured by opts.
func New[K comparable, V any](opts Options) *Cache[K, V] {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	hint := opts.InitialCapacityHint
	if hint < 0 {
		hint = 0
	}
	if hint > opts.Capacity {
		hint = opts.Capacity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Cache[K, V]{
		capacity:    opts.Capacity,
		idleTimeout: opts.IdleTimeout,
		now:         opts.Now,
		logger:      opts.Logger,
		items:       make(map[K]*list.Element, hint),
		order:       list.New(),
	}
}

// Put inserts or overwrites key and marks it most recently accessed.
func (c *Cache[K, V]) Put(key K, value V) {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		e.lastAccess = now
		c.order.MoveToFront(el)
		return
	}

	if len(c.items) >= c.capacity {
		c.removeElement(c.order.Back())
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{
		key:        key,
		value:      value,
		lastAccess: now,
	})
}

// Get returns the value for key. Entries idle for longer than the idle
// timeout are removed and reported as absent. A hit extends the entry's life.
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("token cache get failed", "error", r)
			var zero V
			value, ok = zero, false
		}
	}()

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	el, found := c.items[key]
	if !found {
		return value, false
	}

	e := el.Value.(*entry[K, V])
	if now.Sub(e.lastAccess) > c.idleTimeout {
		c.removeElement(el)
		return value, false
	}

	e.lastAccess = now
	c.order.MoveToFront(el)
	return e.value, true
}

// CompareAndInvalidate removes key if match accepts its value, in a single
// critical section. present reports whether a live entry was found. A live
// entry that match rejects stays resident and counts as an access. Idle
// entries are removed and reported absent.
func (c *Cache[K, V]) CompareAndInvalidate(key K, match func(V) bool) (present, removed bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("token cache compare-and-invalidate failed", "error", r)
			present, removed = false, false
		}
	}()

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	el, found := c.items[key]
	if !found {
		return false, false
	}

	e := el.Value.(*entry[K, V])
	if now.Sub(e.lastAccess) > c.idleTimeout {
		c.removeElement(el)
		return false, false
	}

	if !match(e.value) {
		e.lastAccess = now
		c.order.MoveToFront(el)
		return true, false
	}

	c.removeElement(el)
	return true, true
}

// Invalidate removes key regardless of its age.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Len reports the number of resident entries, including idle ones that have
// not been observed yet.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the configured entry bound.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// clock reads the configured clock for Put. A faulting clock stamps the entry
// with the zero time, which the next Get treats as expired.
func (c *Cache[K, V]) clock() (now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("token cache clock failed", "error", r)
			now = time.Time{}
		}
	}()
	return c.now()
}

func (c *Cache[K, V]) removeElement(el *list.Element) {
	if el == nil {
		return
	}
	e := c.order.Remove(el).(*entry[K, V])
	delete(c.items, e.key)
}
