package system

import (
	"fmt"
	"time"

	"github.com/gunpong/server/internal/core/event"
	coresys "github.com/gunpong/server/internal/core/system"
	"github.com/gunpong/server/internal/net/packet"
	"github.com/gunpong/server/internal/persist"
	"github.com/gunpong/server/internal/world"
	"go.uber.org/zap"
)

// resultSink takes settled match rows off the game loop.
// *persist.ResultWriter is the production sink.
type resultSink interface {
	Enqueue(res persist.Result)
}

// MatchTeardownSystem settles finished matches one tick after they end:
// Elo bookkeeping, the result row for the writer goroutine, the final
// score message, and freeing both seats. The gap means the last snapshot
// (with the winning phase) goes out before the match disappears.
type MatchTeardownSystem struct {
	worldState *world.State
	results    resultSink
	log        *zap.Logger

	finished []event.MatchFinished
}

func NewMatchTeardownSystem(worldState *world.State, results resultSink, bus *event.Bus, log *zap.Logger) *MatchTeardownSystem {
	s := &MatchTeardownSystem{
		worldState: worldState,
		results:    results,
		log:        log,
	}
	event.Subscribe(bus, func(ev event.MatchFinished) {
		s.finished = append(s.finished, ev)
	})
	return s
}

func (s *MatchTeardownSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *MatchTeardownSystem) Update(_ time.Duration) {
	if len(s.finished) == 0 {
		return
	}
	for _, ev := range s.finished {
		s.settle(ev)
	}
	s.finished = s.finished[:0]
}

func (s *MatchTeardownSystem) settle(ev event.MatchFinished) {
	m := s.worldState.GetMatch(ev.MatchID)
	if m == nil {
		return
	}

	winner := m.Seat(ev.Winner)
	loser := m.Seat(ev.Winner.Opponent())

	// Only human-vs-human games are rated; practice against a bot leaves
	// rating and tallies alone.
	rated := !winner.Bot && !loser.Bot
	var adjusts []persist.RatingAdjust
	var journal []persist.RatingLogEntry
	var wRating, wDelta, lRating, lDelta int
	if rated {
		delta := world.EloDelta(winner.Rating, loser.Rating)
		wRating, wDelta = s.applyRating(winner, delta, true, &adjusts)
		lRating, lDelta = s.applyRating(loser, -delta, false, &adjusts)
		journal = []persist.RatingLogEntry{
			{AccountID: winner.AccountID, Delta: wDelta, RatingAfter: wRating},
			{AccountID: loser.AccountID, Delta: lDelta, RatingAfter: lRating},
		}
	} else {
		wRating, lRating = winner.Rating, loser.Rating
	}

	s.results.Enqueue(persist.Result{
		Match: &persist.MatchRow{
			LeftAccount:  seatAccount(&m.Left),
			RightAccount: seatAccount(&m.Right),
			WinnerSide:   int16(ev.Winner),
			LeftScore:    ev.LeftScore,
			RightScore:   ev.RightScore,
			Ticks:        int64(ev.Ticks),
			Seed:         ev.Seed,
		},
		Adjusts: adjusts,
		Log:     journal,
	})

	s.releaseSeat(winner, ev, wRating, wDelta)
	s.releaseSeat(loser, ev, lRating, lDelta)
	s.worldState.RemoveMatch(ev.MatchID)

	s.log.Info(fmt.Sprintf("對戰結束  match=%d  勝方=%s  比分=%d:%d  幀數=%d",
		ev.MatchID, winner.Name, ev.LeftScore, ev.RightScore, ev.Ticks))
}

// applyRating settles one seat's rating and tallies. Online players are
// mutated in memory and flushed later (absolute write); offline players
// get a relative adjustment that rides in the result transaction.
func (s *MatchTeardownSystem) applyRating(seat *world.Seat, delta int, won bool, adjusts *[]persist.RatingAdjust) (rating, applied int) {
	if seat.Bot {
		return 0, 0
	}
	dw, dl := 0, 0
	if won {
		dw = 1
	} else {
		dl = 1
	}
	rating = seat.Rating + delta
	if rating < 0 {
		rating = 0
		delta = -seat.Rating
	}

	if p := s.worldState.GetByAccount(seat.AccountID); p != nil {
		p.Rating = rating
		p.Wins += dw
		p.Losses += dl
		p.Dirty = true
	} else {
		*adjusts = append(*adjusts, persist.RatingAdjust{
			AccountID: seat.AccountID,
			DRating:   delta,
			DWins:     dw,
			DLosses:   dl,
		})
	}
	return rating, delta
}

// releaseSeat sends the final score to a still-seated session and moves it
// back to the lobby.
func (s *MatchTeardownSystem) releaseSeat(seat *world.Seat, ev event.MatchFinished, rating, delta int) {
	if seat.Bot {
		return
	}
	p := s.worldState.GetBySession(seat.SessionID)
	if p == nil {
		return // disconnected; the forfeit already settled their side
	}
	p.MatchID = 0
	p.Session.SendJSON(packet.MsgMatchEnd, packet.MatchEndMsg{
		MatchID:    ev.MatchID,
		Winner:     ev.Winner.String(),
		LeftScore:  ev.LeftScore,
		RightScore: ev.RightScore,
		Rating:     rating,
		Delta:      delta,
	})
	p.Session.SetState(packet.StateLobby)
}

func seatAccount(seat *world.Seat) *int64 {
	if seat.Bot {
		return nil
	}
	a := seat.AccountID
	return &a
}
