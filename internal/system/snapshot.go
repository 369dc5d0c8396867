package system

import (
	"github.com/gunpong/server/internal/component"
	"github.com/gunpong/server/internal/core/ecs"
	"github.com/gunpong/server/internal/net"
	"github.com/gunpong/server/internal/world"
)

// BuildSnapshot flattens a match into its wire form. Particles past the
// budget are cut in emission order; ParticleCount keeps the true total so
// clients can still scale ambient density.
func BuildSnapshot(m *world.Match, budget int, now float64) *net.Snapshot {
	snap := &net.Snapshot{
		Tick:       m.Frame(),
		Phase:      uint8(m.State.Phase),
		LeftScore:  m.State.LeftScore,
		RightScore: m.State.RightScore,
		Intensity:  m.State.Intensity,
		Hitstun:    m.State.Hitstun,
	}

	m.EachBall(func(id ecs.EntityID, tr *component.Transform, b *component.Ball) {
		snap.Balls = append(snap.Balls, net.BallView{
			ID: uint64(id),
			X:  tr.Pos.X, Y: tr.Pos.Y,
			VX: tr.Vel.X, VY: tr.Vel.Y,
			R: b.Radius,
		})
	})

	m.EachPaddle(func(id ecs.EntityID, tr *component.Transform, bd *component.Bounds, _ *component.Control) {
		idx := 0
		if id == m.Right.Paddle {
			idx = 1
		}
		snap.Paddles[idx] = net.PaddleView{
			X: tr.Pos.X, Y: tr.Pos.Y,
			VX: tr.Vel.X, VY: tr.Vel.Y,
			HalfW: bd.HalfW, HalfH: bd.HalfH,
		}
	})

	m.EachBullet(func(id ecs.EntityID, tr *component.Transform, b *component.Bullet) {
		snap.Bullets = append(snap.Bullets, net.BulletView{
			ID: uint64(id),
			X:  tr.Pos.X, Y: tr.Pos.Y,
			VX: tr.Vel.X, VY: tr.Vel.Y,
			R: b.Radius,
		})
	})

	ps := m.Particles()
	snap.ParticleCount = ps.Len()
	n := snap.ParticleCount
	if budget > 0 && n > budget {
		n = budget
	}
	if n > 0 {
		snap.Particles = make([]net.ParticleView, 0, n)
		ps.Each(func(p *world.Particle) {
			if len(snap.Particles) >= n {
				return
			}
			snap.Particles = append(snap.Particles, net.ParticleView{
				X: p.Pos.X, Y: p.Pos.Y,
				Size: p.Size,
				Life: float32(world.LifeFrac(p, now)),
				R:    p.Color.R, G: p.Color.G, B: p.Color.B, A: p.Color.A,
			})
		})
	}
	return snap
}
