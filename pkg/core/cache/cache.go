// Package cache provides the namespaced key-value cache the reconciliation
// client memoizes through. Values are opaque JSON bytes; callers own the
// encoding.
package cache

import "context"

// Cache is a namespaced get/set capability.
//
// Keys are immutable composites and the computation behind every Set is
// deterministic given the same upstream data, so concurrent writers for
// one key always write equivalent values; no locking is required beyond
// what each implementation needs internally.
type Cache interface {
	// Get returns the stored value and whether it was present.
	Get(ctx context.Context, namespace, key string) ([]byte, bool)
	// Set stores a value, replacing any previous one.
	Set(ctx context.Context, namespace, key string, value []byte) error
	// Clear drops one namespace, or everything when namespace is empty.
	Clear(ctx context.Context, namespace string) error
	// Close releases underlying resources.
	Close() error
}

func compositeKey(namespace, key string) string {
	return namespace + "\x00" + key
}
