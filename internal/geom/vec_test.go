package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveTowards(t *testing.T) {
	p, reached := V(0, 0).MoveTowards(V(10, 0), 4)
	assert.False(t, reached)
	assert.Equal(t, V(4, 0), p)

	p, reached = V(8, 0).MoveTowards(V(10, 0), 4)
	assert.True(t, reached)
	assert.Equal(t, V(10, 0), p)
}

func TestSegmentDistTo(t *testing.T) {
	s := Segment{A: V(0, 0), B: V(10, 0)}
	assert.InDelta(t, 3, s.DistTo(V(5, 3)), 1e-9)
	assert.InDelta(t, 5, s.DistTo(V(-3, 4)), 1e-9, "clamped to the end point")
	assert.InDelta(t, 5, Segment{A: V(1, 1), B: V(1, 1)}.DistTo(V(4, 5)), 1e-9)
}

func TestRaySegment(t *testing.T) {
	wall := Segment{A: V(5, -1), B: V(5, 1)}
	d, ok := RaySegment(V(0, 0), V(1, 0), wall)
	assert.True(t, ok)
	assert.InDelta(t, 5, d, 1e-9)

	_, ok = RaySegment(V(0, 0), V(-1, 0), wall)
	assert.False(t, ok, "behind the origin")
	_, ok = RaySegment(V(0, 3), V(1, 0), wall)
	assert.False(t, ok, "past the segment end")
	_, ok = RaySegment(V(0, 0), V(0, 1), wall)
	assert.False(t, ok, "parallel")
}

func TestRayCircle(t *testing.T) {
	d, ok := RayCircle(V(0, 0), V(1, 0), V(5, 0), 1)
	assert.True(t, ok)
	assert.InDelta(t, 4, d, 1e-9)

	d, ok = RayCircle(V(5, 0.5), V(1, 0), V(5, 0), 1)
	assert.True(t, ok)
	assert.Zero(t, d, "origin inside")

	_, ok = RayCircle(V(0, 3), V(1, 0), V(5, 0), 1)
	assert.False(t, ok)
	_, ok = RayCircle(V(10, 0), V(1, 0), V(5, 0), 1)
	assert.False(t, ok)
}
