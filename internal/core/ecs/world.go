package ecs

// World owns the entity slots for one match and the registry of component
// stores hanging off them. Not safe for concurrent use; the game loop is
// the only writer.
type World struct {
	gens     []uint32
	free     []uint32
	registry Registry
	doomed   []EntityID
}

func NewWorld() *World {
	return &World{
		gens: make([]uint32, 0, 64),
		free: make([]uint32, 0, 16),
	}
}

// Registry exposes the store registry so component stores can hook in.
func (w *World) Registry() *Registry { return &w.registry }

// CreateEntity hands out a fresh ID, recycling destroyed slots first.
func (w *World) CreateEntity() EntityID {
	if n := len(w.free); n > 0 {
		slot := w.free[n-1]
		w.free = w.free[:n-1]
		return packID(slot, w.gens[slot])
	}
	slot := uint32(len(w.gens))
	w.gens = append(w.gens, 0)
	return packID(slot, 0)
}

// Alive reports whether the ID still names a live entity.
func (w *World) Alive(id EntityID) bool {
	slot := id.Index()
	return slot < uint32(len(w.gens)) && w.gens[slot] == id.Generation()
}

// MarkForDestruction queues the entity for the end-of-frame flush. Safe to
// call while a query is iterating; marking a dead entity does nothing.
func (w *World) MarkForDestruction(id EntityID) {
	w.doomed = append(w.doomed, id)
}

// FlushDestroyQueue strips every queued entity from all stores and retires
// its slot. Runs between simulation passes, never inside one.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.doomed {
		w.destroy(id)
	}
	w.doomed = w.doomed[:0]
}

func (w *World) destroy(id EntityID) {
	if !w.Alive(id) {
		return
	}
	w.registry.RemoveAll(id)
	slot := id.Index()
	w.gens[slot]++
	w.free = append(w.free, slot)
}

// Clear despawns everything at once. Held IDs go stale the same as on a
// destroy; pending marks are dropped with the entities they named.
func (w *World) Clear() {
	w.registry.ClearAll()
	retired := make(map[uint32]struct{}, len(w.free))
	for _, slot := range w.free {
		retired[slot] = struct{}{}
	}
	for slot := range w.gens {
		if _, ok := retired[uint32(slot)]; ok {
			continue
		}
		w.gens[slot]++
		w.free = append(w.free, uint32(slot))
	}
	w.doomed = w.doomed[:0]
}
