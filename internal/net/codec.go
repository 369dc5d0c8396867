package net

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the per-tick match state broadcast to both seats as a binary
// frame. Keys are kept short; at 60 Hz the envelope overhead dominates
// anything the field data saves.
type Snapshot struct {
	Tick       uint64         `msgpack:"tk"`
	Phase      uint8          `msgpack:"ph"`
	LeftScore  int            `msgpack:"ls"`
	RightScore int            `msgpack:"rs"`
	Intensity  float32        `msgpack:"it"`
	Hitstun    int            `msgpack:"hs"`
	Balls      []BallView     `msgpack:"b"`
	Paddles    [2]PaddleView  `msgpack:"p"` // index 0 = left, 1 = right
	Bullets    []BulletView   `msgpack:"bu"`
	Particles  []ParticleView `msgpack:"pa"`
	// ParticleCount is the full live count; Particles may be truncated to
	// the broadcast budget.
	ParticleCount int `msgpack:"pc"`
}

// BallView is one live ball. Between rounds the Balls slice is empty.
type BallView struct {
	ID uint64  `msgpack:"id"`
	X  float32 `msgpack:"x"`
	Y  float32 `msgpack:"y"`
	VX float32 `msgpack:"vx"`
	VY float32 `msgpack:"vy"`
	R  float32 `msgpack:"r"`
}

// PaddleView carries a paddle's kinematics and current capsule extents.
// Extents are live state, not constants: bullet hits shave HalfH until the
// next serve restores it.
type PaddleView struct {
	X     float32 `msgpack:"x"`
	Y     float32 `msgpack:"y"`
	VX    float32 `msgpack:"vx"`
	VY    float32 `msgpack:"vy"`
	HalfW float32 `msgpack:"hw"`
	HalfH float32 `msgpack:"hh"`
}

// BulletView is one live bullet. Clients infer the owning side from the
// velocity sign.
type BulletView struct {
	ID uint64  `msgpack:"id"`
	X  float32 `msgpack:"x"`
	Y  float32 `msgpack:"y"`
	VX float32 `msgpack:"vx"`
	VY float32 `msgpack:"vy"`
	R  float32 `msgpack:"r"`
}

// ParticleView is one cosmetic particle. Life is the normalized remaining
// lifetime (1 at birth, 0 at death); renderers scale size by it.
type ParticleView struct {
	X    float32 `msgpack:"x"`
	Y    float32 `msgpack:"y"`
	Size float32 `msgpack:"s"`
	Life float32 `msgpack:"l"`
	R    float32 `msgpack:"cr"`
	G    float32 `msgpack:"cg"`
	B    float32 `msgpack:"cb"`
	A    float32 `msgpack:"ca"`
}

// EncodeSnapshot serializes a snapshot for a binary frame.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	b, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses a binary snapshot payload. Clients and headless
// bot tooling use it; the server only encodes.
func DecodeSnapshot(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}
