package system

import (
	"context"
	"fmt"
	"time"

	"github.com/gunpong/server/internal/core/event"
	coresys "github.com/gunpong/server/internal/core/system"
	"github.com/gunpong/server/internal/net"
	"github.com/gunpong/server/internal/net/packet"
	"github.com/gunpong/server/internal/persist"
	"github.com/gunpong/server/internal/world"
	"go.uber.org/zap"
)

// InputSystem accepts new sessions, reaps dead ones, and drains each
// session's message queue through the packet registry.
type InputSystem struct {
	netServer  *net.Server
	registry   *packet.Registry
	store      *net.SessionStore
	maxPerTick int
	worldState *world.State
	accounts   *persist.AccountRepo
	bus        *event.Bus
	log        *zap.Logger
}

func NewInputSystem(
	netServer *net.Server,
	registry *packet.Registry,
	store *net.SessionStore,
	maxPerTick int,
	worldState *world.State,
	accounts *persist.AccountRepo,
	bus *event.Bus,
	log *zap.Logger,
) *InputSystem {
	return &InputSystem{
		netServer:  netServer,
		registry:   registry,
		store:      store,
		maxPerTick: maxPerTick,
		worldState: worldState,
		accounts:   accounts,
		bus:        bus,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Process external dead notices
	for {
		select {
		case id := <-s.netServer.DeadSessions():
			s.store.Remove(id)
		default:
			goto doneDead
		}
	}
doneDead:

	for id, sess := range s.store.Raw() {
		if sess.IsClosed() {
			// Drain remaining messages BEFORE cleanup so a quit or leave
			// sent just ahead of the close still goes through a handler.
			for i := 0; i < s.maxPerTick; i++ {
				select {
				case data := <-sess.InQueue:
					if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
						s.log.Debug("訊息分派錯誤 (斷線中)",
							zap.Uint64("session", sess.ID),
							zap.Error(err),
						)
					}
				default:
					goto doneClosing
				}
			}
		doneClosing:
			sess.FlushOutput()
			s.handleDisconnect(sess)
			s.netServer.NotifyDead(id)
			s.store.Remove(id)
			continue
		}

		for i := 0; i < s.maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
					s.log.Debug("訊息分派錯誤",
						zap.Uint64("session", sess.ID),
						zap.Error(err),
					)
				}
			default:
				goto nextSession
			}
		}
	nextSession:
		// 提前 flush：讓本階段產生的回覆（登入結果、配對通知）立即進入
		// OutQueue，writeLoop 可在模擬階段運行時就開始發送。
		sess.FlushOutput()
	}
}

// handleDisconnect cleans up a closed session: forfeits a running match,
// leaves the queue, flushes an unsaved rating, and removes the player.
func (s *InputSystem) handleDisconnect(sess *net.Session) {
	player := s.worldState.GetBySession(sess.ID)
	if player == nil {
		return // dropped before login
	}

	// Mid-match disconnect hands the match to the opponent. Teardown runs
	// next tick off the seat snapshot, so removing the player below is safe.
	if m := s.worldState.MatchBySession(sess.ID); m != nil && !m.Finished() {
		if seat := m.SeatBySession(sess.ID); seat != nil {
			m.Forfeit(seat.Side.Opponent())
			opp := m.Seat(seat.Side.Opponent())
			if !opp.Bot {
				if op := s.worldState.GetBySession(opp.SessionID); op != nil {
					op.Session.SendJSON(packet.MsgOpponentLeft, packet.OpponentLeftMsg{MatchID: m.ID})
				}
			}
			s.log.Info(fmt.Sprintf("斷線棄權  match=%d  名稱=%s", m.ID, seat.Name))
		}
	}

	s.worldState.Dequeue(sess.ID)

	// A rating changed since the last periodic flush would be lost with the
	// player record, so write it now.
	if player.Dirty {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := s.accounts.UpdateRating(ctx, player.AccountID, player.Rating, player.Wins, player.Losses)
		cancel()
		if err != nil {
			s.log.Error("斷線存檔評分失敗",
				zap.String("name", player.Name),
				zap.Error(err),
			)
		} else {
			player.Dirty = false
		}
	}

	s.worldState.RemovePlayer(sess.ID)
	event.Emit(s.bus, event.SessionClosed{SessionID: sess.ID})
	s.log.Info(fmt.Sprintf("玩家離線  session=%d  名稱=%s", sess.ID, player.Name))
}

// SessionCount returns the current number of live sessions.
func (s *InputSystem) SessionCount() int {
	return s.store.Len()
}
