package world

import (
	"math"

	"github.com/gunpong/server/internal/component"
)

// SquaredDistance returns the squared euclidean distance between p and q.
// Used everywhere in place of true distance to avoid the square root.
func SquaredDistance(p, q component.Vec2) float32 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// SquaredDistancePointSegment returns the squared distance from point c to
// the segment a-b. The endpoint branches take priority over the interior
// projection at the boundary: e <= 0 means a is closest, e >= |ab|² means
// b is closest, anything between projects onto the segment.
func SquaredDistancePointSegment(a, b, c component.Vec2) float32 {
	abx, aby := b.X-a.X, b.Y-a.Y
	acx, acy := c.X-a.X, c.Y-a.Y
	e := acx*abx + acy*aby
	if e <= 0 {
		return acx*acx + acy*acy
	}
	f := abx*abx + aby*aby
	if e >= f {
		bcx, bcy := c.X-b.X, c.Y-b.Y
		return bcx*bcx + bcy*bcy
	}
	return acx*acx + acy*acy - e*e/f
}

// SphereCapsuleOverlap reports whether a circle overlaps a vertical capsule.
// The capsule's segment runs from capCenter+(0,halfH) to capCenter-(0,halfH)
// with radius halfW. halfH == 0 degenerates to a circle-circle test.
func SphereCapsuleOverlap(sphereCenter component.Vec2, sphereRadius float32, capCenter component.Vec2, halfW, halfH float32) bool {
	top := component.Vec2{X: capCenter.X, Y: capCenter.Y + halfH}
	bottom := component.Vec2{X: capCenter.X, Y: capCenter.Y - halfH}
	dist2 := SquaredDistancePointSegment(top, bottom, sphereCenter)
	r := sphereRadius + halfW
	return dist2 <= r*r
}

// renormalize re-pins vel to the given scalar speed. A zero-length vel
// cannot be renormalized; ok is false and the caller keeps the previous
// velocity instead of dividing by zero.
func renormalize(vel component.Vec2, speed float32) (component.Vec2, bool) {
	mag := sqrt32(vel.X*vel.X + vel.Y*vel.Y)
	if mag == 0 {
		return vel, false
	}
	return component.Vec2{X: vel.X / mag * speed, Y: vel.Y / mag * speed}, true
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
