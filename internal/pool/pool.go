// Package pool keeps reusable simulation objects keyed by archetype so that
// enemies and traps are recycled instead of reallocated during play.
package pool

import (
	"fmt"

	"go.uber.org/zap"
)

// Poolable is an object with activation lifecycle hooks. Every object a Pool
// creates is owned by exactly one of the pool's available queue or in-use set.
type Poolable interface {
	comparable
	PreActivation(ctx any)
	PostActivation(ctx any)
	PreDeactivation()
	PostDeactivation()
	SetActive(active bool)
}

// Factory creates a new pooled object for a key.
type Factory[T any] func() T

// Options tune background expansion.
type Options struct {
	// ExpandThreshold marks a key for expansion when its available queue
	// shrinks to exactly this size after a Get.
	ExpandThreshold int
	// ExpandCount is how many objects one background pass adds per marked key.
	ExpandCount int
}

type bucket[T Poolable] struct {
	factory   Factory[T]
	available []T // FIFO; front is index 0
	inUse     []T // activation order
	where     map[T]bool
}

// Pool is a keyed object pool. All methods run on the tick goroutine, no locks.
type Pool[K comparable, T Poolable] struct {
	name    string
	opts    Options
	buckets map[K]*bucket[T]
	keys    []K // registration order
	marked  map[K]bool
	pending []K // marked keys in marking order
	destroy func(K, T)
	log     *zap.Logger
}

// New creates an empty pool. name only appears in log lines.
func New[K comparable, T Poolable](name string, opts Options, log *zap.Logger) *Pool[K, T] {
	if opts.ExpandCount < 1 {
		opts.ExpandCount = 1
	}
	return &Pool[K, T]{
		name:    name,
		opts:    opts,
		buckets: make(map[K]*bucket[T]),
		marked:  make(map[K]bool),
		log:     log,
	}
}

// OnDestroy sets the hook called for every object removed by Clear or ClearAll.
func (p *Pool[K, T]) OnDestroy(fn func(K, T)) {
	p.destroy = fn
}

// Register adds a key with its factory. Registering a key twice is a
// configuration error.
func (p *Pool[K, T]) Register(key K, factory Factory[T]) error {
	if factory == nil {
		return fmt.Errorf("%s pool: key %v: factory is required", p.name, key)
	}
	if _, dup := p.buckets[key]; dup {
		return fmt.Errorf("%s pool: key %v already registered", p.name, key)
	}
	p.buckets[key] = &bucket[T]{factory: factory, where: make(map[T]bool)}
	p.keys = append(p.keys, key)
	return nil
}

// Prewarm creates count deactivated objects for key.
func (p *Pool[K, T]) Prewarm(key K, count int) {
	b := p.mustBucket(key)
	for i := 0; i < count; i++ {
		p.addAvailable(b, p.create(b))
	}
}

// Get activates an object for key. An empty queue never blocks the caller:
// exactly one object is created on the spot and the key is marked so the
// next background pass refills it.
func (p *Pool[K, T]) Get(key K, ctx any) T {
	b := p.mustBucket(key)
	if len(b.available) == 0 {
		p.addAvailable(b, p.create(b))
	}

	obj := b.available[0]
	var zero T
	b.available[0] = zero
	b.available = b.available[1:]

	if n := len(b.available); n == p.opts.ExpandThreshold || n == 0 {
		p.mark(key)
	}

	b.inUse = append(b.inUse, obj)
	b.where[obj] = true

	obj.PreActivation(ctx)
	obj.SetActive(true)
	obj.PostActivation(ctx)
	return obj
}

// Reclaim deactivates obj and returns it to the available queue. Reclaiming
// an object that is already available is a no-op; reclaiming an object this
// pool never created panics.
func (p *Pool[K, T]) Reclaim(key K, obj T) {
	b := p.mustBucket(key)
	inUse, owned := b.where[obj]
	if !owned {
		panic(fmt.Sprintf("%s pool: key %v: reclaiming an object the pool does not own", p.name, key))
	}
	if !inUse {
		return
	}
	for i, o := range b.inUse {
		if o == obj {
			b.inUse = append(b.inUse[:i], b.inUse[i+1:]...)
			break
		}
	}
	p.deactivate(b, obj)
}

// ReclaimAll returns every in-use object of key to its queue.
func (p *Pool[K, T]) ReclaimAll(key K) {
	b := p.mustBucket(key)
	inUse := b.inUse
	b.inUse = nil
	for _, obj := range inUse {
		p.deactivate(b, obj)
	}
}

// ReclaimAllKeys returns every in-use object of every key.
func (p *Pool[K, T]) ReclaimAllKeys() {
	for _, key := range p.keys {
		p.ReclaimAll(key)
	}
}

// Expand runs one background pass: each marked key gets ExpandCount new
// deactivated objects, then all marks are cleared. Returns how many objects
// were created.
func (p *Pool[K, T]) Expand() int {
	created := 0
	for _, key := range p.pending {
		b := p.buckets[key]
		for i := 0; i < p.opts.ExpandCount; i++ {
			p.addAvailable(b, p.create(b))
		}
		created += p.opts.ExpandCount
		p.log.Debug("pool expanded",
			zap.String("pool", p.name),
			zap.Any("key", key),
			zap.Int("added", p.opts.ExpandCount),
			zap.Int("available", len(b.available)),
		)
	}
	clear(p.marked)
	p.pending = p.pending[:0]
	return created
}

// Marked reports whether key waits for the next background pass.
func (p *Pool[K, T]) Marked(key K) bool {
	return p.marked[key]
}

// Clear destroys every object of key, in use or not. It is the only
// operation that shrinks a pool.
func (p *Pool[K, T]) Clear(key K) {
	b := p.mustBucket(key)
	for _, obj := range b.inUse {
		obj.PreDeactivation()
		obj.SetActive(false)
		obj.PostDeactivation()
		p.destroyObj(key, obj)
	}
	for _, obj := range b.available {
		p.destroyObj(key, obj)
	}
	b.inUse = nil
	b.available = nil
	clear(b.where)
}

// ClearAll destroys every object of every key.
func (p *Pool[K, T]) ClearAll() {
	for _, key := range p.keys {
		p.Clear(key)
	}
}

// Available returns the size of key's available queue.
func (p *Pool[K, T]) Available(key K) int {
	return len(p.mustBucket(key).available)
}

// InUse returns the number of active objects of key.
func (p *Pool[K, T]) InUse(key K) int {
	return len(p.mustBucket(key).inUse)
}

// Owns reports whether obj was created by this pool under key and not destroyed since.
func (p *Pool[K, T]) Owns(key K, obj T) bool {
	b, ok := p.buckets[key]
	if !ok {
		return false
	}
	_, owned := b.where[obj]
	return owned
}

// EachInUse visits active objects key by key in registration order, and in
// activation order within a key. fn must not Get or Reclaim.
func (p *Pool[K, T]) EachInUse(fn func(K, T)) {
	for _, key := range p.keys {
		for _, obj := range p.buckets[key].inUse {
			fn(key, obj)
		}
	}
}

// Keys returns registered keys in registration order.
func (p *Pool[K, T]) Keys() []K {
	return p.keys
}

func (p *Pool[K, T]) mustBucket(key K) *bucket[T] {
	b, ok := p.buckets[key]
	if !ok {
		panic(fmt.Sprintf("%s pool: key %v is not registered", p.name, key))
	}
	return b
}

func (p *Pool[K, T]) mark(key K) {
	if p.marked[key] {
		return
	}
	p.marked[key] = true
	p.pending = append(p.pending, key)
}

func (p *Pool[K, T]) create(b *bucket[T]) T {
	obj := b.factory()
	obj.SetActive(false)
	return obj
}

func (p *Pool[K, T]) addAvailable(b *bucket[T], obj T) {
	b.available = append(b.available, obj)
	b.where[obj] = false
}

func (p *Pool[K, T]) deactivate(b *bucket[T], obj T) {
	obj.PreDeactivation()
	obj.SetActive(false)
	obj.PostDeactivation()
	p.addAvailable(b, obj)
}

func (p *Pool[K, T]) destroyObj(key K, obj T) {
	if p.destroy != nil {
		p.destroy(key, obj)
	}
}
