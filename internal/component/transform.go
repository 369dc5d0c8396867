package component

// Transform is the kinematic state of an entity. Mutated every substep by
// the integrator and by collision response. One per entity.
type Transform struct {
	Pos Vec2
	Vel Vec2
}
