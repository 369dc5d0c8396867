package world

// Effects bundles the constant emission parameters the simulation reads.
// The velocity-coupled terms (burst counts and sizes scaling with impact
// speed) are gameplay formulas and stay in the resolver; everything here is
// tuning that data/effects.yaml may override per deployment.
type Effects struct {
	// Paddle and ball motion trails, one per substep.
	TrailSize      float32
	TrailAge       float64
	TrailVelJitter float32

	// Bullet impact bursts (bullet-vs-ball and bullet-vs-paddle).
	ImpactCount      int
	ImpactSize       float32
	ImpactAge        float64
	ImpactPosJitter  float32
	ImpactVelJitterX float32
	ImpactVelJitterY float32
	ImpactSizeJitter float32
	ImpactAgeJitter  float64

	// Ball-vs-paddle bursts; count/size/jitter scale with |vel.x| in code.
	PaddleHitAge       float64
	PaddleHitAgeJitter float64
	PaddleHitPosJitter float32

	// Goal bursts.
	GoalCount     int
	GoalAge       float64
	GoalAgeJitter float64
	GoalPosJitter float32

	// Ambient stream drifting down from the top edge.
	AmbientPeriod    uint64 // frames between emissions
	AmbientSize      float32
	AmbientAge       float64
	AmbientFall      float32
	AmbientVelJitter float32
}

// DefaultEffects returns the shipped tuning.
func DefaultEffects() Effects {
	return Effects{
		TrailSize:      16,
		TrailAge:       0.5,
		TrailVelJitter: 0.2,

		ImpactCount:      3,
		ImpactSize:       8,
		ImpactAge:        0.3,
		ImpactPosJitter:  0.1,
		ImpactVelJitterX: 4,
		ImpactVelJitterY: 8,
		ImpactSizeJitter: 0.5,
		ImpactAgeJitter:  0.25,

		PaddleHitAge:       0.3,
		PaddleHitAgeJitter: 0.25,
		PaddleHitPosJitter: 0.1,

		GoalCount:     100,
		GoalAge:       3.0,
		GoalAgeJitter: 1.0,
		GoalPosJitter: 0.1,

		AmbientPeriod:    8,
		AmbientSize:      2,
		AmbientAge:       60,
		AmbientFall:      0.4,
		AmbientVelJitter: 0.2,
	}
}
