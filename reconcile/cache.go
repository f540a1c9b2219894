package reconcile

// Cache is the last seen version of every entity in one table, keyed by id.
type Cache[T Entity] struct {
	entries map[string]T
}

// NewCache returns an empty cache.
func NewCache[T Entity]() *Cache[T] {
	return &Cache[T]{entries: make(map[string]T)}
}

func (c *Cache[T]) Get(id string) (T, bool) {
	v, ok := c.entries[id]
	return v, ok
}

// Put replaces the whole entry for the entity's id.
func (c *Cache[T]) Put(v T) {
	c.entries[v.EntityID()] = v
}

func (c *Cache[T]) Delete(id string) {
	delete(c.entries, id)
}

func (c *Cache[T]) Len() int {
	return len(c.entries)
}
