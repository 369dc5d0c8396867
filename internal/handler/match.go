package handler

import (
	"encoding/json"
	"fmt"

	"github.com/gunpong/server/internal/component"
	"github.com/gunpong/server/internal/net"
	"github.com/gunpong/server/internal/net/packet"
)

// HandleReady latches the start edge, serving the next round. Clients with
// a dedicated ready button use this; a fire-key press does the same thing.
func HandleReady(sess *net.Session, _ json.RawMessage, deps *Deps) {
	if m := deps.World.MatchBySession(sess.ID); m != nil {
		m.PressStart()
	}
}

// HandleLeave forfeits the match in favor of the opponent. The opponent is
// told right away; the final score message follows when the match is torn
// down next tick.
func HandleLeave(sess *net.Session, _ json.RawMessage, deps *Deps) {
	m := deps.World.MatchBySession(sess.ID)
	if m == nil || m.Finished() {
		return
	}
	seat := m.SeatBySession(sess.ID)
	if seat == nil {
		return
	}
	m.Forfeit(seat.Side.Opponent())

	opp := m.Seat(seat.Side.Opponent())
	if !opp.Bot {
		if op := deps.World.GetBySession(opp.SessionID); op != nil {
			op.Session.SendJSON(packet.MsgOpponentLeft, packet.OpponentLeftMsg{MatchID: m.ID})
		}
	}
	deps.Log.Info(fmt.Sprintf("棄權離場  match=%d  名稱=%s", m.ID, seat.Name))
}

// HandleInput applies a binary control frame to the player's paddle.
// Held state is taken as-is; a fresh fire-key press (left or right, not
// held from the previous frame) doubles as the round-start input.
func HandleInput(sess *net.Session, r *packet.Reader, deps *Deps) {
	p := deps.World.GetBySession(sess.ID)
	if p == nil {
		return
	}
	m := deps.World.MatchBySession(sess.ID)
	if m == nil {
		return
	}
	seat := m.SeatBySession(sess.ID)
	if seat == nil {
		return
	}

	f := packet.ReadControlFrame(r)
	in := component.InputFrame{Up: f.Up, Down: f.Down, Left: f.Left, Right: f.Right}
	edge := (f.Left && !p.LastInput.Left) || (f.Right && !p.LastInput.Right)
	p.LastInput = in

	m.SetInput(seat.Side, in)
	if edge {
		m.PressStart()
	}
}
