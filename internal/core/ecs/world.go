package ecs

// World ties the allocator to the component stores of pooled actors.
// Pooled actors keep their entity across reuse, so destruction only happens
// when a pool is cleared: the clear queues the IDs and CleanupSystem flushes
// them at the end of the tick.
type World struct {
	ids     *Allocator
	stores  []Removable
	pending []EntityID
}

func NewWorld() *World {
	return &World{ids: NewAllocator()}
}

// Track makes stores part of entity destruction.
func (w *World) Track(stores ...Removable) {
	w.stores = append(w.stores, stores...)
}

func (w *World) CreateEntity() EntityID         { return w.ids.Allocate() }
func (w *World) Alive(id EntityID) bool         { return w.ids.Valid(id) }
func (w *World) Live() int                      { return w.ids.Live() }
func (w *World) PendingDestruction() int        { return len(w.pending) }
func (w *World) MarkForDestruction(id EntityID) { w.pending = append(w.pending, id) }

// FlushDestroyQueue drops every queued entity from the tracked stores and
// releases its ID.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.pending {
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.ids.Release(id)
	}
	w.pending = w.pending[:0]
}
