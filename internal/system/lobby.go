package system

import (
	"time"

	"github.com/gunpong/server/internal/core/event"
	coresys "github.com/gunpong/server/internal/core/system"
	"github.com/gunpong/server/internal/handler"
	"github.com/gunpong/server/internal/net/packet"
	"github.com/gunpong/server/internal/world"
	"go.uber.org/zap"
)

// LobbySystem pairs queued players into matches, longest wait first, and
// keeps the rest informed of their queue position.
type LobbySystem struct {
	deps       *handler.Deps
	log        *zap.Logger
	queueDirty bool
}

func NewLobbySystem(deps *handler.Deps, log *zap.Logger) *LobbySystem {
	s := &LobbySystem{deps: deps, log: log}
	// A disconnect can free a queue slot; everyone behind moves up.
	event.Subscribe(deps.Bus, func(event.SessionClosed) { s.queueDirty = true })
	return s
}

func (s *LobbySystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *LobbySystem) Update(_ time.Duration) {
	ws := s.deps.World
	for {
		a, b, ok := ws.PopPair()
		if !ok {
			break
		}
		left := world.SeatConfig{SessionID: a.SessionID, AccountID: a.AccountID, Name: a.Name, Rating: a.Rating}
		right := world.SeatConfig{SessionID: b.SessionID, AccountID: b.AccountID, Name: b.Name, Rating: b.Rating}
		handler.StartMatch(s.deps, left, right)
		s.queueDirty = true
	}

	if s.queueDirty {
		s.queueDirty = false
		ws.EachQueued(func(pos int, p *world.PlayerInfo) {
			p.Session.SendJSON(packet.MsgQueued, packet.QueuedMsg{Position: pos})
		})
	}
}
