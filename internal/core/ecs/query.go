package ecs

// Each2 iterates over entities that have both component A and B, in
// ascending EntityID order. It walks the smaller store and probes the larger.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for _, id := range sa.IDs() {
			if b, ok := sb.data[id]; ok {
				fn(id, sa.data[id], b)
			}
		}
		return
	}
	for _, id := range sb.IDs() {
		if a, ok := sa.data[id]; ok {
			fn(id, a, sb.data[id])
		}
	}
}
