package ecs

// Each2 visits every entity holding both components. The smaller store
// drives the loop. Mutating one component while reading the other is fine;
// adding or removing entries mid-iteration is not.
func Each2[A, B any](as *PtrComponentStore[A], bs *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if bs.Len() < as.Len() {
		for id, b := range bs.items {
			if a, ok := as.items[id]; ok {
				fn(id, a, b)
			}
		}
		return
	}
	for id, a := range as.items {
		if b, ok := bs.items[id]; ok {
			fn(id, a, b)
		}
	}
}

// Each3 visits every entity holding all three components, driving from the
// smallest store.
func Each3[A, B, C any](as *PtrComponentStore[A], bs *PtrComponentStore[B], cs *PtrComponentStore[C], fn func(EntityID, *A, *B, *C)) {
	switch {
	case as.Len() <= bs.Len() && as.Len() <= cs.Len():
		for id, a := range as.items {
			b, ok := bs.items[id]
			if !ok {
				continue
			}
			if c, ok := cs.items[id]; ok {
				fn(id, a, b, c)
			}
		}
	case bs.Len() <= cs.Len():
		for id, b := range bs.items {
			a, ok := as.items[id]
			if !ok {
				continue
			}
			if c, ok := cs.items[id]; ok {
				fn(id, a, b, c)
			}
		}
	default:
		for id, c := range cs.items {
			a, ok := as.items[id]
			if !ok {
				continue
			}
			if b, ok := bs.items[id]; ok {
				fn(id, a, b, c)
			}
		}
	}
}
