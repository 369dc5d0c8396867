package component

// Bounds is a vertical capsule: a segment from Pos-(0,HalfH) to Pos+(0,HalfH)
// with radius HalfW. HalfH shrinks as the paddle takes bullet damage and
// never goes below zero; at zero the capsule degenerates to a circle.
type Bounds struct {
	HalfW float32
	HalfH float32
}
