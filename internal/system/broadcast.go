package system

import (
	"time"

	"github.com/gunpong/server/internal/core/event"
	coresys "github.com/gunpong/server/internal/core/system"
	"github.com/gunpong/server/internal/net"
	"github.com/gunpong/server/internal/net/packet"
	"github.com/gunpong/server/internal/world"
	"go.uber.org/zap"
)

// BroadcastSystem builds one snapshot per running match and sends it to
// both human seats as a binary frame, then flushes every session's output
// buffer. Goal and phase events go out as JSON cues alongside.
type BroadcastSystem struct {
	worldState *world.State
	store      *net.SessionStore
	budget     int // particles per snapshot; the full count still rides along
	now        func() float64
	log        *zap.Logger
}

func NewBroadcastSystem(worldState *world.State, store *net.SessionStore, bus *event.Bus, budget int, now func() float64, log *zap.Logger) *BroadcastSystem {
	s := &BroadcastSystem{
		worldState: worldState,
		store:      store,
		budget:     budget,
		now:        now,
		log:        log,
	}
	event.Subscribe(bus, func(ev event.Goal) {
		s.eachSeatSession(ev.MatchID, func(sess *net.Session) {
			sess.SendJSON(packet.MsgGoal, packet.GoalMsg{
				MatchID:    ev.MatchID,
				Winner:     ev.Winner.String(),
				LeftScore:  ev.LeftScore,
				RightScore: ev.RightScore,
			})
		})
	})
	event.Subscribe(bus, func(ev event.PhaseChanged) {
		s.eachSeatSession(ev.MatchID, func(sess *net.Session) {
			sess.SendJSON(packet.MsgPhase, packet.PhaseMsg{
				MatchID: ev.MatchID,
				Phase:   ev.To.String(),
			})
		})
	})
	return s
}

func (s *BroadcastSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *BroadcastSystem) Update(_ time.Duration) {
	now := s.now()
	for _, m := range s.worldState.MatchList() {
		snap := BuildSnapshot(m, s.budget, now)
		data, err := net.EncodeSnapshot(snap)
		if err != nil {
			s.log.Error("快照編碼失敗", zap.Uint64("match", m.ID), zap.Error(err))
			continue
		}
		s.eachSeatSession(m.ID, func(sess *net.Session) {
			sess.SendBinary(packet.MarkerSnapshot, data)
		})
	}

	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

// eachSeatSession runs fn for each connected human seat of a match.
func (s *BroadcastSystem) eachSeatSession(matchID uint64, fn func(*net.Session)) {
	m := s.worldState.GetMatch(matchID)
	if m == nil {
		return
	}
	for _, seat := range [2]*world.Seat{&m.Left, &m.Right} {
		if seat.Bot {
			continue
		}
		if p := s.worldState.GetBySession(seat.SessionID); p != nil {
			fn(p.Session)
		}
	}
}
