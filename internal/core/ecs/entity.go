package ecs

// EntityID names one live entity: the low 32 bits are a slot index, the
// high 32 bits a generation stamp. Destroying a slot bumps its generation,
// so an ID held across a despawn (a bullet marked mid-substep, a ball
// cleared on a goal) goes stale instead of aliasing the next spawn.
type EntityID uint64

func packID(slot, gen uint32) EntityID {
	return EntityID(uint64(gen)<<32 | uint64(slot))
}

// Index returns the slot half of the ID.
func (id EntityID) Index() uint32 { return uint32(id) }

// Generation returns the stamp half of the ID.
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }

func (id EntityID) IsZero() bool { return id == 0 }
