package world

import (
	"math"

	"github.com/gunpong/server/internal/component"
	"github.com/gunpong/server/internal/core/ecs"
	"github.com/gunpong/server/internal/core/event"
)

// BotBrain resolves a scripted bot personality into a paddle command.
// Returning ok=false falls back to the built-in chase behavior.
type BotBrain interface {
	PaddleCommand(ctx BotContext) (BotCommand, bool)
}

// BotContext is the read-only view a bot script decides from.
// Ball fields are the nearest live ball; HasBall=false means none in play.
type BotContext struct {
	Script    string
	Side      component.Side
	Now       float64
	FieldW    float32
	FieldH    float32
	SelfPos   component.Vec2
	SelfVel   component.Vec2
	HasBall   bool
	BallPos   component.Vec2
	BallVel   component.Vec2
	BallSpeed float32
}

// BotCommand is what a script asks its paddle to do this substep.
// Accel is clamped to the same envelope as the built-in behavior.
// Fire is -1 (shoot left), 0 (hold), or +1 (shoot right).
type BotCommand struct {
	Accel float32
	Fire  int
}

// resolveControls applies damping, player input, and bot decisions to the
// paddles, emits their movement trails, then spawns queued bullets.
// Seats resolve left before right so a seeded match replays identically.
// 球的快照在槳迴圈前取好，AI 鎖定目標時槳還沒動。
func (m *Match) resolveControls(now float64) {
	m.ballSnaps = m.ballSnaps[:0]
	for _, id := range m.sortedBallIDs() {
		t, tok := m.transforms.Get(id)
		b, bok := m.balls.Get(id)
		if !tok || !bok {
			continue
		}
		m.ballSnaps = append(m.ballSnaps, ballSnap{
			id: id, pos: t.Pos, vel: t.Vel, speed: b.Speed, radius: b.Radius,
		})
	}

	for _, seat := range []*Seat{&m.Left, &m.Right} {
		t, tok := m.transforms.Get(seat.Paddle)
		ctl, cok := m.controls.Get(seat.Paddle)
		if !tok || !cok {
			continue
		}

		// Bleed off speed so paddles stay controllable.
		t.Vel.X *= damping
		t.Vel.Y *= damping

		switch ctl.Kind {
		case component.ControlPlayer:
			in := ctl.Input
			t.Vel.Y += (b2f(in.Down) - b2f(in.Up)) * playerAccel
			// Holding both fire directions cancels out.
			if in.Right != in.Left && now > ctl.NextFireTime {
				ctl.NextFireTime = now + fireCooldown
				m.queueBullet(seat.Paddle, t, b2f(in.Right)-b2f(in.Left))
			}
		case component.ControlAI:
			m.resolveBot(seat.Paddle, t, ctl, now)
		}

		m.particles.Emit(EmitSpec{
			Count:     1,
			Pos:       t.Pos,
			Size:      m.effects.TrailSize,
			Color:     ColorBlack,
			Age:       m.effects.TrailAge,
			VelJitter: component.Vec2{X: m.effects.TrailVelJitter, Y: m.effects.TrailVelJitter},
		}, now)
	}

	m.flushBulletQueue()
}

func (m *Match) resolveBot(id ecs.EntityID, t *component.Transform, ctl *component.Control, now float64) {
	if m.brain != nil && ctl.Script != "" {
		if cmd, ok := m.brain.PaddleCommand(m.botContext(id, t, ctl.Script, now)); ok {
			t.Vel.Y += clamp32(cmd.Accel, -aiAccelCap, aiAccelCap)
			if cmd.Fire != 0 && now > ctl.NextFireTime {
				ctl.NextFireTime = now + fireCooldown
				dir := float32(1)
				if cmd.Fire < 0 {
					dir = -1
				}
				m.queueBullet(id, t, dir)
			}
			return
		}
	}
	m.chaseNearestBall(t)
}

// chaseNearestBall is the built-in behavior: accelerate vertically toward
// the closest ball, harder the farther away it is. 沒球就只剩阻尼滑行。
func (m *Match) chaseNearestBall(t *component.Transform) {
	target, distSq, ok := m.nearestBall(t.Pos)
	if !ok {
		return
	}
	var sign float32
	switch {
	case t.Pos.Y < target.pos.Y:
		sign = 1
	case t.Pos.Y > target.pos.Y:
		sign = -1
	}
	accel := sign * (aiAccelRate * sqrt32(distSq) / m.fieldW)
	t.Vel.Y += clamp32(accel, -aiAccelCap, aiAccelCap)
}

func (m *Match) nearestBall(from component.Vec2) (ballSnap, float32, bool) {
	if len(m.ballSnaps) == 0 {
		return ballSnap{}, 0, false
	}
	target, best := m.ballSnaps[0], float32(math.MaxFloat32)
	for _, b := range m.ballSnaps {
		if d := SquaredDistance(from, b.pos); d < best {
			target, best = b, d
		}
	}
	return target, best, true
}

func (m *Match) botContext(id ecs.EntityID, t *component.Transform, script string, now float64) BotContext {
	ctx := BotContext{
		Script:  script,
		Side:    m.sideOf(id),
		Now:     now,
		FieldW:  m.fieldW,
		FieldH:  m.fieldH,
		SelfPos: t.Pos,
		SelfVel: t.Vel,
	}
	if snap, _, ok := m.nearestBall(t.Pos); ok {
		ctx.HasBall = true
		ctx.BallPos = snap.pos
		ctx.BallVel = snap.vel
		ctx.BallSpeed = snap.speed
	}
	return ctx
}

func (m *Match) queueBullet(shooter ecs.EntityID, t *component.Transform, dir float32) {
	m.bulletQueue = append(m.bulletQueue, pendingBullet{
		tr: component.Transform{
			Pos: component.Vec2{X: t.Pos.X + dir*bulletOffset, Y: t.Pos.Y},
			Vel: component.Vec2{X: dir * bulletSpeed, Y: (m.rng.Float32()*2 - 1) * bulletVelJitter},
		},
		shooter: shooter,
		side:    m.sideOf(shooter),
	})
}

// flushBulletQueue spawns bullets queued during the control pass. Spawning
// is deferred so new bullets never join an iteration already underway.
func (m *Match) flushBulletQueue() {
	for i := range m.bulletQueue {
		pb := m.bulletQueue[i]
		id := m.world.CreateEntity()
		tr := pb.tr
		m.transforms.Set(id, &tr)
		m.bullets.Set(id, &component.Bullet{Radius: bulletRadius})
		event.Emit(m.bus, event.BulletFired{MatchID: m.ID, Shooter: pb.shooter, Side: pb.side})
	}
	m.bulletQueue = m.bulletQueue[:0]
}

func b2f(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
