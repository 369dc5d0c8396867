package component

// Vec2 is a 2D float32 pair. Pure data; arithmetic happens inline at the
// use site, matching the rest of the simulation code.
type Vec2 struct {
	X float32
	Y float32
}
