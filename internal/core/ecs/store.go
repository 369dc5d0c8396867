package ecs

// Removable lets the registry strip a dead entity from every store without
// knowing component types, and empty the lot on a world reset.
type Removable interface {
	Remove(id EntityID)
	Clear()
}

// PtrComponentStore maps entities to heap-allocated components of one type.
// Callers mutate through the returned pointer; there is no copy-out.
type PtrComponentStore[T any] struct {
	items map[EntityID]*T
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{items: make(map[EntityID]*T, 64)}
}

func (s *PtrComponentStore[T]) Set(id EntityID, c *T) { s.items[id] = c }

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.items[id]
	return c, ok
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.items[id]
	return ok
}

func (s *PtrComponentStore[T]) Remove(id EntityID) { delete(s.items, id) }

func (s *PtrComponentStore[T]) Clear() { clear(s.items) }

func (s *PtrComponentStore[T]) Len() int { return len(s.items) }

// Each visits every entry in map order. Callers that need a stable order
// snapshot into a slice first.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.items {
		fn(id, c)
	}
}

// Registry is the set of stores a world tears dead entities out of.
type Registry struct {
	members []Removable
}

func (r *Registry) Register(store Removable) {
	r.members = append(r.members, store)
}

func (r *Registry) RemoveAll(id EntityID) {
	for _, m := range r.members {
		m.Remove(id)
	}
}

func (r *Registry) ClearAll() {
	for _, m := range r.members {
		m.Clear()
	}
}
