package world

import (
	"math/rand"
	"slices"

	"github.com/gunpong/server/internal/component"
	"github.com/gunpong/server/internal/core/ecs"
	"github.com/gunpong/server/internal/core/event"
)

// Simulation constants. The substep count is fixed: the simulation is tuned
// for a stable 60 Hz tick and is deliberately not delta-time scaled.
const (
	substeps = 3
	overscan = 16.0 // clamp margin beyond the field so goals fire off-screen

	paddleHalfW = 16.0
	paddleHalfH = 32.0
	paddleInset = 64.0 // paddle x distance from its field edge

	damping     = 0.95
	playerAccel = 0.3

	fireCooldown    = 0.35
	bulletOffset    = 32.0
	bulletSpeed     = 2.0
	bulletVelJitter = 0.1
	bulletRadius    = 2.0

	ballRadius = 16.0

	aiAccelRate = 60.0
	aiAccelCap  = 0.25

	speedGrowth        = 0.5  // ball speed gain per paddle hit: speed += growth/speed
	paddleVelInfluence = 0.25 // paddle velocity carried into the redirected ball
	bulletVelInfluence = 0.25 // bullet velocity carried into the knocked ball

	intensityScale = 4.0
)

// MatchState is the per-match phase/score/feedback block. Intensity is a
// single-frame derived value; Hitstun is a countdown in frames during which
// the simulation is frozen.
type MatchState struct {
	Phase      component.Phase
	LeftScore  int
	RightScore int
	Intensity  float32
	Hitstun    int
}

// Seat is one side of a match: a human session or a bot. Rating is the
// value at match start; a player's rating cannot change while seated, so
// the finish bookkeeping reads it even if the session is already gone.
type Seat struct {
	Side      component.Side
	Paddle    ecs.EntityID
	SessionID uint64 // 0 for bots
	AccountID int64  // 0 for bots
	Name      string
	Rating    int
	Bot       bool
	Script    string // bot personality, empty = built-in chase
}

// SeatConfig describes one side when creating a match.
type SeatConfig struct {
	SessionID uint64
	AccountID int64
	Name      string
	Rating    int
	Bot       bool
	Script    string
}

// MatchParams are the knobs a new match is built from.
type MatchParams struct {
	ID       uint64
	FieldW   float32
	FieldH   float32
	WinScore int // rounds needed to win the match; <= 0 means endless
	MaxBurst int
	Seed     int64
	Effects  Effects
	Brain    BotBrain // scripted personalities; nil = built-in AI only
	Bus      *event.Bus
}

// Match owns one game's entity store, phase state, and particle set.
// Single-goroutine access only (game loop).
type Match struct {
	ID    uint64
	State MatchState
	Left  Seat
	Right Seat

	world      *ecs.World
	transforms *ecs.PtrComponentStore[component.Transform]
	balls      *ecs.PtrComponentStore[component.Ball]
	bullets    *ecs.PtrComponentStore[component.Bullet]
	bounds     *ecs.PtrComponentStore[component.Bounds]
	controls   *ecs.PtrComponentStore[component.Control]

	fieldW   float32
	fieldH   float32
	winScore int
	seed     int64
	effects  Effects
	brain    BotBrain
	bus      *event.Bus

	particles *ParticleSystem
	rng       *rand.Rand

	frame        uint64
	startLatched bool
	finished     bool

	// Reusable per-substep scratch buffers.
	ballSnaps   []ballSnap
	paddleSnaps []paddleSnap
	bulletSnaps []bulletSnap
	liveBalls   []ecs.EntityID
	bulletQueue []pendingBullet
	marked      []ecs.EntityID
}

type ballSnap struct {
	id     ecs.EntityID
	pos    component.Vec2
	vel    component.Vec2
	speed  float32
	radius float32
}

type paddleSnap struct {
	id ecs.EntityID
	tr component.Transform
	bd component.Bounds
}

type bulletSnap struct {
	id  ecs.EntityID
	tr  component.Transform
	rad float32
}

type pendingBullet struct {
	tr      component.Transform
	shooter ecs.EntityID
	side    component.Side
}

// NewMatch builds a match with two paddles in their serve positions.
// The ball spawns on the first start edge, not here.
func NewMatch(p MatchParams, left, right SeatConfig) *Match {
	if p.Bus == nil {
		p.Bus = event.NewBus()
	}
	m := &Match{
		ID:       p.ID,
		world:    ecs.NewWorld(),
		fieldW:   p.FieldW,
		fieldH:   p.FieldH,
		winScore: p.WinScore,
		seed:     p.Seed,
		effects:  p.Effects,
		brain:    p.Brain,
		bus:      p.Bus,
		rng:      rand.New(rand.NewSource(p.Seed)),
	}
	m.transforms = ecs.NewPtrComponentStore[component.Transform]()
	m.balls = ecs.NewPtrComponentStore[component.Ball]()
	m.bullets = ecs.NewPtrComponentStore[component.Bullet]()
	m.bounds = ecs.NewPtrComponentStore[component.Bounds]()
	m.controls = ecs.NewPtrComponentStore[component.Control]()
	for _, s := range []ecs.Removable{m.transforms, m.balls, m.bullets, m.bounds, m.controls} {
		m.world.Registry().Register(s)
	}
	m.particles = NewParticleSystem(m.rng, p.MaxBurst)

	m.Left = m.spawnSeat(component.SideLeft, left)
	m.Right = m.spawnSeat(component.SideRight, right)
	return m
}

func (m *Match) spawnSeat(side component.Side, cfg SeatConfig) Seat {
	x := float32(paddleInset)
	if side == component.SideRight {
		x = m.fieldW - paddleInset
	}
	id := m.world.CreateEntity()
	m.transforms.Set(id, &component.Transform{
		Pos: component.Vec2{X: x, Y: m.fieldH / 2},
	})
	m.bounds.Set(id, &component.Bounds{HalfW: paddleHalfW, HalfH: paddleHalfH})
	ctl := &component.Control{Kind: component.ControlPlayer}
	if cfg.Bot {
		ctl.Kind = component.ControlAI
		ctl.Script = cfg.Script
	}
	m.controls.Set(id, ctl)

	return Seat{
		Side:      side,
		Paddle:    id,
		SessionID: cfg.SessionID,
		AccountID: cfg.AccountID,
		Name:      cfg.Name,
		Rating:    cfg.Rating,
		Bot:       cfg.Bot,
		Script:    cfg.Script,
	}
}

// Seat returns the seat for a side.
func (m *Match) Seat(side component.Side) *Seat {
	if side == component.SideLeft {
		return &m.Left
	}
	return &m.Right
}

// SeatBySession returns the seat a session occupies, or nil.
func (m *Match) SeatBySession(sessionID uint64) *Seat {
	if m.Left.SessionID == sessionID && !m.Left.Bot {
		return &m.Left
	}
	if m.Right.SessionID == sessionID && !m.Right.Bot {
		return &m.Right
	}
	return nil
}

// SetInput replaces a paddle's held control state.
func (m *Match) SetInput(side component.Side, in component.InputFrame) {
	if ctl, ok := m.controls.Get(m.Seat(side).Paddle); ok {
		ctl.Input = in
	}
}

// PressStart latches the start/restart edge for this frame.
func (m *Match) PressStart() {
	m.startLatched = true
}

// Finished reports whether a side has reached the win score.
func (m *Match) Finished() bool { return m.finished }

// Frame returns the number of frames advanced so far.
func (m *Match) Frame() uint64 { return m.frame }

// FieldSize returns the playfield dimensions.
func (m *Match) FieldSize() (w, h float32) { return m.fieldW, m.fieldH }

// Seed returns the RNG seed the match was built with.
func (m *Match) Seed() int64 { return m.seed }

// Advance runs one simulation frame at the given simulation-clock time.
// While hitstun is active only the countdown (and the ambient stream) runs;
// otherwise the serve check fires and exactly three substeps execute, each
// integrating positions, resolving controls, and resolving collisions.
func (m *Match) Advance(now float64) {
	m.frame++

	if m.State.Hitstun > 0 {
		m.State.Hitstun--
		m.emitAmbient(now)
		m.startLatched = false
		return
	}

	if m.State.Phase != component.PhaseOngoing && m.startLatched {
		m.serve()
	}
	m.startLatched = false

	for i := 0; i < substeps; i++ {
		m.integrate()
		m.resolveControls(now)
		m.resolveCollisions(now)
		m.world.FlushDestroyQueue()
	}

	m.emitAmbient(now)
	m.checkMatchEnd()
}

// AdvanceParticles integrates and prunes the particle set. Runs after the
// frame's snapshot read so a particle is visible on its final frame.
func (m *Match) AdvanceParticles(now float64) {
	m.particles.Advance(now)
}

// serve spawns a fresh ball at field center and restores both paddles.
// The ball travels toward the opponent of the previous round's winner;
// from the initial Start phase it travels right.
func (m *Match) serve() {
	speed := m.fieldW / 1280.0
	dir := float32(1)
	if m.State.Phase == component.PhaseRightWin {
		dir = -1
	}

	id := m.world.CreateEntity()
	m.transforms.Set(id, &component.Transform{
		Pos: component.Vec2{X: m.fieldW / 2, Y: m.fieldH / 2},
		Vel: component.Vec2{X: speed * dir},
	})
	m.balls.Set(id, &component.Ball{Radius: ballRadius, Speed: speed})

	m.bounds.Each(func(_ ecs.EntityID, b *component.Bounds) {
		b.HalfW = paddleHalfW
		b.HalfH = paddleHalfH
	})

	from := m.State.Phase
	m.State.Phase = component.PhaseOngoing
	event.Emit(m.bus, event.PhaseChanged{MatchID: m.ID, From: from, To: component.PhaseOngoing})
}

// integrate advances every transform by its velocity and clamps both axes
// into the overscan margin around the field.
func (m *Match) integrate() {
	m.transforms.Each(func(_ ecs.EntityID, t *component.Transform) {
		t.Pos.X = clamp32(t.Pos.X+t.Vel.X, -overscan, m.fieldW+overscan)
		t.Pos.Y = clamp32(t.Pos.Y+t.Vel.Y, -overscan, m.fieldH+overscan)
	})
}

func (m *Match) emitAmbient(now float64) {
	if m.effects.AmbientPeriod == 0 || m.frame%m.effects.AmbientPeriod != 0 {
		return
	}
	m.particles.Emit(EmitSpec{
		Count:     1,
		Pos:       component.Vec2{X: m.fieldW / 2, Y: -4},
		Vel:       component.Vec2{Y: m.effects.AmbientFall},
		Size:      m.effects.AmbientSize,
		Color:     ColorWhite,
		Age:       m.effects.AmbientAge,
		PosJitter: component.Vec2{X: m.fieldW / 2},
		VelJitter: component.Vec2{Y: m.effects.AmbientVelJitter},
	}, now)
}

// Forfeit ends the match in the given side's favor at the current score,
// for when the opponent disconnects mid-match. Emits the same finish
// event a played-out win does.
func (m *Match) Forfeit(winner component.Side) {
	if m.finished {
		return
	}
	m.finished = true
	event.Emit(m.bus, event.MatchFinished{
		MatchID:    m.ID,
		Winner:     winner,
		LeftScore:  m.State.LeftScore,
		RightScore: m.State.RightScore,
		Ticks:      m.frame,
		Seed:       m.seed,
	})
}

func (m *Match) checkMatchEnd() {
	if m.finished || m.winScore <= 0 {
		return
	}
	var winner component.Side
	switch {
	case m.State.Phase == component.PhaseLeftWin && m.State.LeftScore >= m.winScore:
		winner = component.SideLeft
	case m.State.Phase == component.PhaseRightWin && m.State.RightScore >= m.winScore:
		winner = component.SideRight
	default:
		return
	}
	m.finished = true
	event.Emit(m.bus, event.MatchFinished{
		MatchID:    m.ID,
		Winner:     winner,
		LeftScore:  m.State.LeftScore,
		RightScore: m.State.RightScore,
		Ticks:      m.frame,
		Seed:       m.seed,
	})
}

// sortedBallIDs fills the scratch slice with live ball ids in a stable
// order. Map iteration is randomized; the simulation is not allowed to be.
func (m *Match) sortedBallIDs() []ecs.EntityID {
	m.liveBalls = m.liveBalls[:0]
	m.balls.Each(func(id ecs.EntityID, _ *component.Ball) {
		m.liveBalls = append(m.liveBalls, id)
	})
	slices.Sort(m.liveBalls)
	return m.liveBalls
}

// sideOf maps a paddle entity to its seat's side.
func (m *Match) sideOf(id ecs.EntityID) component.Side {
	if id == m.Left.Paddle {
		return component.SideLeft
	}
	return component.SideRight
}

// Particles exposes the live particle set for snapshot reads.
func (m *Match) Particles() *ParticleSystem { return m.particles }

// EachBall iterates live balls.
func (m *Match) EachBall(fn func(ecs.EntityID, *component.Transform, *component.Ball)) {
	ecs.Each2(m.transforms, m.balls, fn)
}

// EachBullet iterates live bullets.
func (m *Match) EachBullet(fn func(ecs.EntityID, *component.Transform, *component.Bullet)) {
	ecs.Each2(m.transforms, m.bullets, fn)
}

// EachPaddle iterates the paddles with their capsule bounds and control.
func (m *Match) EachPaddle(fn func(ecs.EntityID, *component.Transform, *component.Bounds, *component.Control)) {
	ecs.Each3(m.transforms, m.bounds, m.controls, fn)
}
