package store

import "sync"

// Keyed is implemented by every entity held in a Collection.
type Keyed interface {
	Key() string
}

// Collection is an ordered id -> entity map. Readers always get copies of
// whole entities; writers replace whole entities.
type Collection[T Keyed] struct {
	mu      sync.RWMutex
	items   map[string]T
	order   []string
	version uint64
	notify  func(version uint64)
}

func NewCollection[T Keyed](notify func(version uint64)) *Collection[T] {
	return &Collection[T]{items: make(map[string]T), notify: notify}
}

// bump must be called with mu held; it returns the new version so the
// caller can notify after unlocking.
func (c *Collection[T]) bump() uint64 {
	c.version++
	return c.version
}

func (c *Collection[T]) changed(v uint64) {
	if c.notify != nil {
		c.notify(v)
	}
}

// Replace swaps the whole collection. Later duplicates of a key win but keep
// the position of the first occurrence.
func (c *Collection[T]) Replace(items []T) uint64 {
	c.mu.Lock()
	c.items = make(map[string]T, len(items))
	c.order = make([]string, 0, len(items))
	for _, it := range items {
		k := it.Key()
		if _, dup := c.items[k]; !dup {
			c.order = append(c.order, k)
		}
		c.items[k] = it
	}
	v := c.bump()
	c.mu.Unlock()
	c.changed(v)
	return v
}

// Put upserts item, appending it when new.
func (c *Collection[T]) Put(item T) uint64 {
	c.mu.Lock()
	k := item.Key()
	if _, ok := c.items[k]; !ok {
		c.order = append(c.order, k)
	}
	c.items[k] = item
	v := c.bump()
	c.mu.Unlock()
	c.changed(v)
	return v
}

// Prepend upserts item and moves it to the front.
func (c *Collection[T]) Prepend(item T) uint64 {
	c.mu.Lock()
	k := item.Key()
	if _, ok := c.items[k]; ok {
		c.order = removeKey(c.order, k)
	}
	c.order = append([]string{k}, c.order...)
	c.items[k] = item
	v := c.bump()
	c.mu.Unlock()
	c.changed(v)
	return v
}

// Update applies fn to a copy of the entity and stores the result. It reports
// false when id is unknown, in which case nothing changes.
func (c *Collection[T]) Update(id string, fn func(T) T) (T, bool) {
	c.mu.Lock()
	cur, ok := c.items[id]
	if !ok {
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	next := fn(cur)
	c.items[id] = next
	v := c.bump()
	c.mu.Unlock()
	c.changed(v)
	return next, true
}

func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	if _, ok := c.items[id]; !ok {
		c.mu.Unlock()
		return false
	}
	delete(c.items, id)
	c.order = removeKey(c.order, id)
	v := c.bump()
	c.mu.Unlock()
	c.changed(v)
	return true
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[id]
	return it, ok
}

func (c *Collection[T]) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// List returns the entities in order.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.items[k])
	}
	return out
}

// Snapshot returns the ordered entities together with the version they were
// read at.
func (c *Collection[T]) Snapshot() ([]T, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.items[k])
	}
	return out, c.version
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *Collection[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Clear empties the collection. The version keeps increasing.
func (c *Collection[T]) Clear() {
	c.Replace(nil)
}

func removeKey(order []string, k string) []string {
	out := make([]string, 0, len(order))
	for _, o := range order {
		if o != k {
			out = append(out, o)
		}
	}
	return out
}
