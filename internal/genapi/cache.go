package genapi

// CacheStore sits between node evaluation and device I/O. Entries are
// keyed by the requesting node plus the concrete byte range, so two
// logical nodes sharing a physical address cache independently.
//
// A no-op implementation (CacheSink) satisfies the same interface so
// callers can opt out of caching without changing node logic.
type CacheStore interface {
	// StoreCache records the raw bytes last read for (node, address, length).
	StoreCache(n NodeID, address, length int64, data []byte)

	// Cache returns the cached bytes for (node, address, length), if any.
	Cache(n NodeID, address, length int64) ([]byte, bool)

	// InvalidateBy drops the cache of every node transitively reachable
	// through n's registered invalidator edges, and n's own entries.
	InvalidateBy(n NodeID)

	// InvalidateOf drops only n's own cache entries.
	InvalidateOf(n NodeID)

	// Clear drops everything. Used on channel re-open or explicit
	// cache disable.
	Clear()
}

// cacheKey identifies one cached register read.
type cacheKey struct {
	node    NodeID
	address int64
	length  int64
}

// DefaultCacheStore is the standard CacheStore backed by a map. It is
// not internally locked; the owning ValueCtxt is accessed exclusively.
type DefaultCacheStore struct {
	entries map[cacheKey][]byte

	// invalidators is the invalidator->dependents adjacency captured
	// from the node store at construction time.
	invalidators map[NodeID][]NodeID
}

// NewDefaultCacheStore creates a cache primed with the invalidator
// edges recorded in the node store. The graph itself is not touched, so
// a context's cache policy can be swapped at any time.
func NewDefaultCacheStore(ns *NodeStore) *DefaultCacheStore {
	return &DefaultCacheStore{
		entries:      make(map[cacheKey][]byte),
		invalidators: ns.InvalidatorEdges(),
	}
}

// StoreCache implements CacheStore. The data is copied; callers may
// reuse their buffer.
func (c *DefaultCacheStore) StoreCache(n NodeID, address, length int64, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	c.entries[cacheKey{node: n, address: address, length: length}] = buf
}

// Cache implements CacheStore. The returned slice is a copy.
func (c *DefaultCacheStore) Cache(n NodeID, address, length int64) ([]byte, bool) {
	data, ok := c.entries[cacheKey{node: n, address: address, length: length}]
	if !ok {
		return nil, false
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, true
}

// InvalidateBy implements CacheStore. The walk follows the full closure
// of invalidator edges: an invalidated node that is itself an
// invalidator propagates further.
func (c *DefaultCacheStore) InvalidateBy(n NodeID) {
	visited := map[NodeID]bool{}
	stack := []NodeID{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		c.InvalidateOf(cur)
		stack = append(stack, c.invalidators[cur]...)
	}
}

// InvalidateOf implements CacheStore.
func (c *DefaultCacheStore) InvalidateOf(n NodeID) {
	for k := range c.entries {
		if k.node == n {
			delete(c.entries, k)
		}
	}
}

// Clear implements CacheStore.
func (c *DefaultCacheStore) Clear() {
	c.entries = make(map[cacheKey][]byte)
}

// Len returns the number of live entries. Used by tests and metrics.
func (c *DefaultCacheStore) Len() int { return len(c.entries) }

// CacheSink is a CacheStore that never caches. Every lookup misses and
// every mutation is a no-op.
type CacheSink struct{}

// StoreCache implements CacheStore.
func (CacheSink) StoreCache(NodeID, int64, int64, []byte) {}

// Cache implements CacheStore.
func (CacheSink) Cache(NodeID, int64, int64) ([]byte, bool) { return nil, false }

// InvalidateBy implements CacheStore.
func (CacheSink) InvalidateBy(NodeID) {}

// InvalidateOf implements CacheStore.
func (CacheSink) InvalidateOf(NodeID) {}

// Clear implements CacheStore.
func (CacheSink) Clear() {}

// ValueCtxt bundles the mutable half of a camera connection: interned
// immediate values and the register cache. One ValueCtxt belongs to one
// open connection and must be accessed exclusively; even reads mutate
// the cache on a miss. Sharing across goroutines is the caller's
// responsibility (see feature.Registry).
type ValueCtxt struct {
	Values *ValueStore
	Cache  CacheStore
}

// NewValueCtxt pairs a value store with a cache policy.
func NewValueCtxt(values *ValueStore, cache CacheStore) *ValueCtxt {
	return &ValueCtxt{Values: values, Cache: cache}
}
