package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorReusesSlotWithNewGeneration(t *testing.T) {
	a := NewAllocator()
	first := a.Allocate()
	require.False(t, first.IsZero())
	assert.Equal(t, uint32(1), first.Index())
	assert.Equal(t, "1:0", first.String())
	assert.True(t, a.Valid(first))

	a.Release(first)
	assert.False(t, a.Valid(first))
	a.Release(first)
	assert.Zero(t, a.Live(), "stale release is ignored")

	second := a.Allocate()
	assert.Equal(t, first.Index(), second.Index())
	assert.Equal(t, "1:1", second.String())
	assert.False(t, a.Valid(first))
	assert.True(t, a.Valid(second))
	assert.False(t, a.Valid(0))
}

func TestStoreIteratesInIDOrder(t *testing.T) {
	s := NewPtrComponentStore[int]()
	for _, id := range []EntityID{9, 3, 5} {
		v := int(id) * 10
		s.Set(id, &v)
	}
	var seen []EntityID
	s.Each(func(id EntityID, v *int) {
		assert.Equal(t, int(id)*10, *v)
		seen = append(seen, id)
	})
	assert.Equal(t, []EntityID{3, 5, 9}, seen)
}

func TestEach2VisitsIntersection(t *testing.T) {
	names := NewPtrComponentStore[string]()
	scores := NewPtrComponentStore[int]()
	for _, id := range []EntityID{1, 2, 3, 4} {
		n := "e"
		names.Set(id, &n)
	}
	for _, id := range []EntityID{4, 2} {
		v := int(id)
		scores.Set(id, &v)
	}
	var seen []EntityID
	Each2(names, scores, func(id EntityID, _ *string, v *int) {
		assert.Equal(t, int(id), *v)
		seen = append(seen, id)
	})
	assert.Equal(t, []EntityID{2, 4}, seen)
}

func TestWorldFlushDestroyQueue(t *testing.T) {
	w := NewWorld()
	store := NewPtrComponentStore[string]()
	w.Track(store)

	id := w.CreateEntity()
	v := "trap"
	store.Set(id, &v)

	w.MarkForDestruction(id)
	assert.Equal(t, 1, w.PendingDestruction())
	assert.True(t, w.Alive(id), "destruction waits for the flush")

	w.FlushDestroyQueue()
	assert.False(t, w.Alive(id))
	assert.False(t, store.Has(id))
	assert.Zero(t, w.PendingDestruction())
}
