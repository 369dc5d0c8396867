package component

// ControlKind discriminates the Control variant.
type ControlKind uint8

const (
	ControlPlayer ControlKind = iota
	ControlAI
)

// InputFrame is the held directional state for one paddle, written by the
// input system from the owning session's latest control frame.
type InputFrame struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

// Control decides how a paddle produces its per-substep velocity delta and
// whether it fires. Exactly one per paddle.
//
// Player variant: Input holds the session's current control frame;
// NextFireTime gates bullet spawning (simulation-clock seconds).
// AI variant: Script names a Lua personality, empty = built-in chase.
type Control struct {
	Kind ControlKind

	Input        InputFrame
	NextFireTime float64

	Script string
}
