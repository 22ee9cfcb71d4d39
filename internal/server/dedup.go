// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package server runs blobfish's acceptor: a TCP accept loop that spawns
// one session per connection, backed by a dedup cache keyed by package
// digest so a package already on disk is never re-transferred.
package server

import "sync"

// DedupCache tracks digests of packages already accepted for transfer (they
// are recorded before the transfer starts), so concurrent or repeat offers
// of the same package short-circuit to a Dedup answer.
type DedupCache struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewDedupCache returns an empty cache.
func NewDedupCache() *DedupCache {
	return &DedupCache{seen: make(map[string]struct{})}
}

// Has reports whether digest has already been recorded.
func (c *DedupCache) Has(digest string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.seen[digest]
	return ok
}

// Insert records digest as seen. Safe to call redundantly.
func (c *DedupCache) Insert(digest string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[digest] = struct{}{}
}
