package crdtstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_CommitAndGet(t *testing.T) {
	s := NewStore("replica-a")
	b := NewBatch()
	b.Set("page:1:node:1", "hello")

	s.Commit("user", b)

	v, ok := s.Get("page:1:node:1")
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	origin, ok := s.LastOrigin("page:1:node:1")
	assert.True(t, ok)
	assert.Equal(t, "user", origin)
}

func TestStore_DeleteTombstones(t *testing.T) {
	s := NewStore("replica-a")
	b := NewBatch()
	b.Set("k", "v")
	s.Commit("user", b)

	b2 := NewBatch()
	b2.Delete("k")
	s.Commit("user", b2)

	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestStore_SubscribeGeneralFiresOnAnyChange(t *testing.T) {
	s := NewStore("replica-a")
	var fired int
	unsub := s.Subscribe(nil, func(changed []string, origin string) { fired++ })
	defer unsub()

	b := NewBatch()
	b.Set("anything", 1)
	s.Commit("layout", b)

	assert.Equal(t, 1, fired)
}

func TestStore_SubscribeGranularOnlyFiresOnMatchingKey(t *testing.T) {
	s := NewStore("replica-a")
	var fired int
	unsub := s.Subscribe([]string{"watched"}, func(changed []string, origin string) { fired++ })
	defer unsub()

	b := NewBatch()
	b.Set("unwatched", 1)
	s.Commit("user", b)
	assert.Equal(t, 0, fired)

	b2 := NewBatch()
	b2.Set("watched", 2)
	s.Commit("user", b2)
	assert.Equal(t, 1, fired)
}

func TestStore_MergeRemoteWinsOnHigherTimestamp(t *testing.T) {
	s := NewStore("replica-a")
	b := NewBatch()
	b.Set("k", "local")
	s.Commit("user", b)

	s.Merge([]RemoteEntry{
		{Key: "k", Stamp: StampID{Timestamp: 1000, ReplicaID: "replica-b"}, Value: "remote", Origin: "sync"},
	})

	v, _ := s.Get("k")
	assert.Equal(t, "remote", v)
}

func TestStore_MergeRemoteLosesOnLowerTimestamp(t *testing.T) {
	s := NewStore("replica-a")
	b := NewBatch()
	b.Set("k", "local")
	s.Commit("user", b) // local clock ticks to 1

	s.Merge([]RemoteEntry{
		{Key: "k", Stamp: StampID{Timestamp: -1, ReplicaID: "replica-b"}, Value: "stale", Origin: "sync"},
	})

	v, _ := s.Get("k")
	assert.Equal(t, "local", v)
}

func TestStore_Unsubscribe(t *testing.T) {
	s := NewStore("replica-a")
	var fired int
	unsub := s.Subscribe(nil, func(changed []string, origin string) { fired++ })
	unsub()

	b := NewBatch()
	b.Set("k", 1)
	s.Commit("user", b)

	assert.Equal(t, 0, fired)
}
