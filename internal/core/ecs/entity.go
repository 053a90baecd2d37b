package ecs

import "strconv"

// EntityID names one pooled actor. The low 32 bits are a slot index and the
// high 32 bits the slot's generation, so an ID captured by a trap or the
// scheduler stops matching once its slot is released and reused.
type EntityID uint64

func makeID(slot, gen uint32) EntityID { return EntityID(uint64(gen)<<32 | uint64(slot)) }

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// String renders the ID as slot:generation for logs.
func (id EntityID) String() string {
	return strconv.FormatUint(uint64(id.Index()), 10) + ":" + strconv.FormatUint(uint64(id.Generation()), 10)
}

type slot struct {
	gen  uint32
	live bool
}

// Allocator hands out entity IDs. Slot 0 is never used, so the zero
// EntityID is always invalid. Released slots are reused last-in first-out.
type Allocator struct {
	slots []slot
	free  []uint32
	live  int
}

func NewAllocator() *Allocator {
	return &Allocator{slots: make([]slot, 1, 256)}
}

func (a *Allocator) Allocate() EntityID {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot{})
	}
	a.slots[idx].live = true
	a.live++
	return makeID(idx, a.slots[idx].gen)
}

// Valid reports whether id names a live slot at the current generation.
func (a *Allocator) Valid(id EntityID) bool {
	idx := int(id.Index())
	if idx == 0 || idx >= len(a.slots) {
		return false
	}
	s := a.slots[idx]
	return s.live && s.gen == id.Generation()
}

// Release frees id's slot. Stale IDs are ignored.
func (a *Allocator) Release(id EntityID) {
	if !a.Valid(id) {
		return
	}
	s := &a.slots[id.Index()]
	s.live = false
	s.gen++
	a.free = append(a.free, id.Index())
	a.live--
}

func (a *Allocator) Live() int { return a.live }
