package world

import (
	"testing"

	"github.com/gunpong/server/internal/component"
)

// near absorbs float32 rounding; the simulation never needs better than this.
func near(a, b float32) bool {
	return abs32(a-b) < 1e-4
}

func TestSquaredDistance(t *testing.T) {
	d := SquaredDistance(component.Vec2{X: 1, Y: 2}, component.Vec2{X: 4, Y: 6})
	if d != 25 {
		t.Fatalf("squared distance = %f, want 25", d)
	}
	if SquaredDistance(component.Vec2{X: 3, Y: 3}, component.Vec2{X: 3, Y: 3}) != 0 {
		t.Fatal("distance to self should be 0")
	}
}

func TestSquaredDistancePointSegment(t *testing.T) {
	a := component.Vec2{X: 0, Y: 0}
	b := component.Vec2{X: 0, Y: 10}

	// Point projects onto the segment interior.
	if d := SquaredDistancePointSegment(a, b, component.Vec2{X: 0, Y: 5}); d != 0 {
		t.Fatalf("on-segment point distance = %f, want 0", d)
	}
	if d := SquaredDistancePointSegment(a, b, component.Vec2{X: 5, Y: 5}); d != 25 {
		t.Fatalf("perpendicular point distance = %f, want 25", d)
	}

	// Point projects past either endpoint.
	if d := SquaredDistancePointSegment(a, b, component.Vec2{X: 0, Y: -5}); d != 25 {
		t.Fatalf("below-endpoint distance = %f, want 25", d)
	}
	if d := SquaredDistancePointSegment(a, b, component.Vec2{X: 0, Y: 15}); d != 25 {
		t.Fatalf("above-endpoint distance = %f, want 25", d)
	}

	// Translating everything together changes nothing.
	off := component.Vec2{X: 7, Y: -3}
	d := SquaredDistancePointSegment(
		component.Vec2{X: a.X + off.X, Y: a.Y + off.Y},
		component.Vec2{X: b.X + off.X, Y: b.Y + off.Y},
		component.Vec2{X: 5 + off.X, Y: 5 + off.Y},
	)
	if d != 25 {
		t.Fatalf("translated distance = %f, want 25", d)
	}
}

func TestSphereCapsuleOverlap(t *testing.T) {
	center := component.Vec2{X: 0, Y: 0}
	const halfW, halfH = 16.0, 32.0

	// Touching on the flat side counts as overlap.
	if !SphereCapsuleOverlap(component.Vec2{X: 32, Y: 0}, 16, center, halfW, halfH) {
		t.Fatal("sphere touching capsule side should overlap")
	}
	if SphereCapsuleOverlap(component.Vec2{X: 33, Y: 0}, 16, center, halfW, halfH) {
		t.Fatal("sphere just past capsule side should not overlap")
	}

	// The rounded cap extends halfH past the center.
	if !SphereCapsuleOverlap(component.Vec2{X: 0, Y: 64}, 16, center, halfW, halfH) {
		t.Fatal("sphere touching capsule cap should overlap")
	}
	if SphereCapsuleOverlap(component.Vec2{X: 0, Y: 65}, 16, center, halfW, halfH) {
		t.Fatal("sphere past capsule cap should not overlap")
	}

	// Zero half-height degenerates into a circle.
	if !SphereCapsuleOverlap(component.Vec2{X: 0, Y: 20}, 16, center, halfW, 0) {
		t.Fatal("degenerate capsule should still act as a circle")
	}
}

func TestRenormalizeKeepsSpeedAndRejectsZero(t *testing.T) {
	v, ok := renormalize(component.Vec2{X: 3, Y: 4}, 10)
	if !ok {
		t.Fatal("nonzero vector should renormalize")
	}
	if !near(v.X, 6) || !near(v.Y, 8) {
		t.Fatalf("renormalized = (%f, %f), want (6, 8)", v.X, v.Y)
	}

	if _, ok := renormalize(component.Vec2{}, 10); ok {
		t.Fatal("zero vector must not renormalize")
	}
}
