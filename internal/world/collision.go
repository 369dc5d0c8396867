package world

import (
	"cmp"
	"math"
	"slices"

	"github.com/gunpong/server/internal/component"
	"github.com/gunpong/server/internal/core/ecs"
	"github.com/gunpong/server/internal/core/event"
)

// resolveCollisions runs the substep's collision passes: bullets against
// balls and paddles first, then balls against goals, walls, and paddles.
// Paddle state is copied out once at pass start and every overlap test reads
// the copy: a hit must not see mutations made by an earlier hit in the
// same substep. Damage still lands on the live stores and is visible from
// the next substep on.
func (m *Match) resolveCollisions(now float64) {
	m.snapshotPaddles()
	m.resolveBullets(now)
	m.resolveBalls(now)
}

func (m *Match) snapshotPaddles() {
	m.paddleSnaps = m.paddleSnaps[:0]
	for _, seat := range []*Seat{&m.Left, &m.Right} {
		t, tok := m.transforms.Get(seat.Paddle)
		bd, bok := m.bounds.Get(seat.Paddle)
		if !tok || !bok {
			continue
		}
		m.paddleSnaps = append(m.paddleSnaps, paddleSnap{id: seat.Paddle, tr: *t, bd: *bd})
	}
}

// resolveBullets tests every bullet against the live balls and the paddle
// snapshot. Landed bullets despawn at substep end and each landing adds one
// frame of hitstun, so a bullet that clips a ball and a paddle in the same
// substep counts twice.
func (m *Match) resolveBullets(now float64) {
	if m.bullets.Len() == 0 {
		return
	}

	m.bulletSnaps = m.bulletSnaps[:0]
	m.bullets.Each(func(id ecs.EntityID, b *component.Bullet) {
		if t, ok := m.transforms.Get(id); ok {
			m.bulletSnaps = append(m.bulletSnaps, bulletSnap{id: id, tr: *t, rad: b.Radius})
		}
	})
	slices.SortFunc(m.bulletSnaps, func(a, b bulletSnap) int {
		return cmp.Compare(a.id, b.id)
	})

	m.marked = m.marked[:0]
	for i := range m.bulletSnaps {
		bl := m.bulletSnaps[i]

		// 子彈打球：判定只看球自己的半徑，被打飛的球保持原速。
		for _, ballID := range m.sortedBallIDs() {
			t, tok := m.transforms.Get(ballID)
			ball, bok := m.balls.Get(ballID)
			if !tok || !bok {
				continue
			}
			if SquaredDistance(bl.tr.Pos, t.Pos) >= ball.Radius*ball.Radius {
				continue
			}
			cand := component.Vec2{
				X: (t.Pos.X-bl.tr.Pos.X)/2 + bl.tr.Vel.X*bulletVelInfluence,
				Y: (t.Pos.Y-bl.tr.Pos.Y)/2 + bl.tr.Vel.Y*bulletVelInfluence,
			}
			if v, ok := renormalize(cand, ball.Speed); ok {
				t.Vel = v
			}
			m.emitImpact(bl.tr.Pos, t.Vel, now)
			m.marked = append(m.marked, bl.id)
			event.Emit(m.bus, event.BulletBallHit{MatchID: m.ID, Bullet: bl.id, Ball: ballID})
		}

		// 子彈打槳：膠囊判定，命中就削掉一格高度。
		for i := range m.paddleSnaps {
			p := &m.paddleSnaps[i]
			if !SphereCapsuleOverlap(bl.tr.Pos, bl.rad, p.tr.Pos, p.bd.HalfW, p.bd.HalfH) {
				continue
			}
			if bd, ok := m.bounds.Get(p.id); ok {
				bd.HalfH -= 1.0
				if bd.HalfH < 0 {
					bd.HalfH = 0
				}
			}
			m.emitImpact(bl.tr.Pos, p.tr.Vel, now)
			m.marked = append(m.marked, bl.id)
			event.Emit(m.bus, event.BulletPaddleHit{MatchID: m.ID, Bullet: bl.id, Paddle: p.id})
		}
	}

	for _, id := range m.marked {
		m.world.MarkForDestruction(id)
		m.State.Hitstun++
	}
}

// resolveBalls walks the live balls through goal, wall, and paddle checks,
// rebuilding the intensity meter as it goes.
func (m *Match) resolveBalls(now float64) {
	m.State.Intensity = 0

	for _, ballID := range m.sortedBallIDs() {
		t, tok := m.transforms.Get(ballID)
		ball, bok := m.balls.Get(ballID)
		if !tok || !bok {
			continue
		}

		// A goal retires this ball for the rest of the substep. The phase
		// gate makes goals exclusive: once a side has won the round no
		// other ball can win it again.
		if t.Pos.X > m.fieldW && m.State.Phase == component.PhaseOngoing {
			m.scoreGoal(ballID, t, component.SideLeft, now)
			continue
		}
		if t.Pos.X < 0 && m.State.Phase == component.PhaseOngoing {
			m.scoreGoal(ballID, t, component.SideRight, now)
			continue
		}

		if t.Pos.Y < 0 || t.Pos.Y > m.fieldH {
			t.Vel.Y = -t.Vel.Y
			t.Pos.Y = clamp32(t.Pos.Y, 0, m.fieldH)
			event.Emit(m.bus, event.WallBounce{MatchID: m.ID, Ball: ballID})
		}

		for i := range m.paddleSnaps {
			p := &m.paddleSnaps[i]
			if !SphereCapsuleOverlap(t.Pos, ball.Radius, p.tr.Pos, p.bd.HalfW, p.bd.HalfH) {
				continue
			}
			// 越快的球加速越少，但永遠在變快。
			ball.Speed += speedGrowth / ball.Speed
			// A fully shredded paddle has zero extent on an axis; skip that
			// axis's normalization rather than divide by zero.
			dx := t.Pos.X - p.tr.Pos.X
			if p.bd.HalfW > 0 {
				dx /= p.bd.HalfW
			}
			dy := t.Pos.Y - p.tr.Pos.Y
			if p.bd.HalfH > 0 {
				dy /= p.bd.HalfH
			}
			cand := component.Vec2{
				X: dx + p.tr.Vel.X*paddleVelInfluence,
				Y: dy + p.tr.Vel.Y*paddleVelInfluence,
			}
			if v, ok := renormalize(cand, ball.Speed); ok {
				t.Vel = v
			}
			m.emitPaddleHit(t.Pos, t.Vel, now)
			m.State.Hitstun += int(math.Round(float64(ball.Speed * 2)))
			event.Emit(m.bus, event.BallPaddleHit{
				MatchID: m.ID, Ball: ballID, Paddle: p.id, Speed: ball.Speed,
			})
		}

		m.State.Intensity += ball.Speed

		// Ball trail lifetime follows the running intensity.
		m.particles.Emit(EmitSpec{
			Count:     1,
			Pos:       t.Pos,
			Size:      m.effects.TrailSize,
			Color:     ColorBlack,
			Age:       float64(m.State.Intensity) / intensityScale,
			VelJitter: component.Vec2{X: m.effects.TrailVelJitter, Y: m.effects.TrailVelJitter},
		}, now)
	}

	m.State.Intensity *= intensityScale
}

// scoreGoal flips the phase, credits the scorer, throws the burst, and
// despawns the ball.
func (m *Match) scoreGoal(ballID ecs.EntityID, t *component.Transform, winner component.Side, now float64) {
	from := m.State.Phase
	var burst Color
	if winner == component.SideLeft {
		m.State.Phase = component.PhaseLeftWin
		m.State.LeftScore++
		burst = ColorRed
	} else {
		m.State.Phase = component.PhaseRightWin
		m.State.RightScore++
		burst = ColorBlue
	}
	event.Emit(m.bus, event.PhaseChanged{MatchID: m.ID, From: from, To: m.State.Phase})

	spread := abs32(t.Vel.X)
	m.particles.Emit(EmitSpec{
		Count:      m.effects.GoalCount,
		Pos:        t.Pos,
		Vel:        component.Vec2{X: -t.Vel.X, Y: -t.Vel.Y},
		Size:       4 * (abs32(t.Vel.X) + abs32(t.Vel.Y)),
		Color:      burst,
		Age:        m.effects.GoalAge,
		PosJitter:  component.Vec2{X: m.effects.GoalPosJitter, Y: m.effects.GoalPosJitter},
		VelJitter:  component.Vec2{X: 2 + spread, Y: 8 + spread},
		SizeJitter: spread,
		AgeJitter:  m.effects.GoalAgeJitter,
	}, now)

	m.world.MarkForDestruction(ballID)
	event.Emit(m.bus, event.Goal{
		MatchID:    m.ID,
		Winner:     winner,
		LeftScore:  m.State.LeftScore,
		RightScore: m.State.RightScore,
	})
}

func (m *Match) emitImpact(at, v component.Vec2, now float64) {
	m.particles.Emit(EmitSpec{
		Count:      m.effects.ImpactCount,
		Pos:        at,
		Vel:        component.Vec2{X: v.X * 2, Y: v.Y * 2},
		Size:       m.effects.ImpactSize,
		Color:      ColorWhite,
		Age:        m.effects.ImpactAge,
		PosJitter:  component.Vec2{X: m.effects.ImpactPosJitter, Y: m.effects.ImpactPosJitter},
		VelJitter:  component.Vec2{X: m.effects.ImpactVelJitterX, Y: m.effects.ImpactVelJitterY},
		SizeJitter: m.effects.ImpactSizeJitter,
		AgeJitter:  m.effects.ImpactAgeJitter,
	}, now)
}

func (m *Match) emitPaddleHit(at, v component.Vec2, now float64) {
	spread := abs32(v.X)
	m.particles.Emit(EmitSpec{
		Count:      int(spread),
		Pos:        at,
		Vel:        component.Vec2{X: v.X * 2, Y: v.Y * 2},
		Size:       4 * spread,
		Color:      ColorWhite,
		Age:        m.effects.PaddleHitAge,
		PosJitter:  component.Vec2{X: m.effects.PaddleHitPosJitter, Y: m.effects.PaddleHitPosJitter},
		VelJitter:  component.Vec2{X: 2 + spread, Y: 4 + spread},
		SizeJitter: 0.25 * spread,
		AgeJitter:  m.effects.PaddleHitAgeJitter,
	}, now)
}
