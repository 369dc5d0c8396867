package event

import (
	"github.com/gunpong/server/internal/component"
	"github.com/gunpong/server/internal/core/ecs"
)

// Simulation events. Emitted during a match tick, delivered to subscribers
// (broadcast, persistence, client sound cues) the following tick.

type BulletFired struct {
	MatchID uint64
	Shooter ecs.EntityID
	Side    component.Side
}

type BulletBallHit struct {
	MatchID uint64
	Bullet  ecs.EntityID
	Ball    ecs.EntityID
}

type BulletPaddleHit struct {
	MatchID uint64
	Bullet  ecs.EntityID
	Paddle  ecs.EntityID
}

type BallPaddleHit struct {
	MatchID uint64
	Ball    ecs.EntityID
	Paddle  ecs.EntityID
	Speed   float32 // ball speed after the hit
}

type WallBounce struct {
	MatchID uint64
	Ball    ecs.EntityID
}

type Goal struct {
	MatchID    uint64
	Winner     component.Side
	LeftScore  int
	RightScore int
}

type PhaseChanged struct {
	MatchID uint64
	From    component.Phase
	To      component.Phase
}

// MatchFinished fires once when a side reaches the win score or a forfeit.
// The teardown system settles ratings, frees the seats, and queues the
// result row.
type MatchFinished struct {
	MatchID    uint64
	Winner     component.Side
	LeftScore  int
	RightScore int
	Ticks      uint64
	Seed       int64
}

// Session-level events.

type AccountLoggedIn struct {
	SessionID   uint64
	AccountID   int64
	AccountName string
}

type SessionClosed struct {
	SessionID uint64
}
