package component

// Side identifies a seat in a match.
type Side uint8

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// Phase is the match state machine's current state.
//
//	Start → Ongoing → {LeftWin, RightWin} → Ongoing (restart)
type Phase uint8

const (
	PhaseStart Phase = iota
	PhaseOngoing
	PhaseLeftWin
	PhaseRightWin
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseOngoing:
		return "ongoing"
	case PhaseLeftWin:
		return "left_win"
	case PhaseRightWin:
		return "right_win"
	default:
		return "unknown"
	}
}
