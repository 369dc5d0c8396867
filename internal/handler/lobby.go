package handler

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/gunpong/server/internal/component"
	"github.com/gunpong/server/internal/net"
	"github.com/gunpong/server/internal/net/packet"
	"github.com/gunpong/server/internal/world"
)

// StartMatch seats two configs into a fresh match, moves the human players
// out of the queue and into StateMatch, and announces the pairing to both.
// LobbySystem calls this for queue pairings; HandlePractice for bot games.
func StartMatch(deps *Deps, left, right world.SeatConfig) *world.Match {
	// A nil *Engine must stay a nil interface, or the brain check inside
	// the match would pass and then panic on call.
	var brain world.BotBrain
	if deps.Scripting != nil {
		brain = deps.Scripting
	}

	cfg := deps.Config
	m := world.NewMatch(world.MatchParams{
		ID:       deps.World.NextMatchID(),
		FieldW:   cfg.Game.FieldW,
		FieldH:   cfg.Game.FieldH,
		WinScore: cfg.Game.WinScore,
		MaxBurst: cfg.Game.MaxBurst,
		Seed:     rand.Int63(),
		Effects:  deps.Effects,
		Brain:    brain,
		Bus:      deps.Bus,
	}, left, right)
	deps.World.AddMatch(m)

	seats := [2]*world.Seat{&m.Left, &m.Right}
	for i, seat := range seats {
		if seat.Bot {
			continue
		}
		p := deps.World.GetBySession(seat.SessionID)
		if p == nil {
			continue
		}
		p.MatchID = m.ID
		p.LastInput = component.InputFrame{}
		deps.World.Dequeue(p.SessionID)
		p.Session.SetState(packet.StateMatch)

		fw, fh := m.FieldSize()
		p.Session.SendJSON(packet.MsgMatchStart, packet.MatchStartMsg{
			MatchID:  m.ID,
			Side:     seat.Side.String(),
			Opponent: seats[1-i].Name,
			FieldW:   fw,
			FieldH:   fh,
			WinScore: cfg.Game.WinScore,
		})
	}

	deps.Log.Info(fmt.Sprintf("開始對戰  match=%d  左=%s  右=%s  seed=%d",
		m.ID, m.Left.Name, m.Right.Name, m.Seed()))
	return m
}

// HandleQueueJoin puts the player into the matchmaking queue.
// LobbySystem pairs queued players off on the next tick.
func HandleQueueJoin(sess *net.Session, _ json.RawMessage, deps *Deps) {
	if !deps.World.Enqueue(sess.ID) {
		sendError(sess, "already queued or in a match")
		return
	}
	sess.SendJSON(packet.MsgQueued, packet.QueuedMsg{Position: deps.World.QueueLen()})
}

// HandleQueueLeave removes the player from the queue. Always acknowledged,
// even when they were not queued, so the client can settle its UI.
func HandleQueueLeave(sess *net.Session, _ json.RawMessage, deps *Deps) {
	deps.World.Dequeue(sess.ID)
	sess.SendJSON(packet.MsgQueueLeft, nil)
}

// HandlePractice starts an unrated game against a scripted bot.
// The requested personality falls back to the roster default when unknown.
func HandlePractice(sess *net.Session, data json.RawMessage, deps *Deps) {
	p := deps.World.GetBySession(sess.ID)
	if p == nil {
		return
	}
	if p.MatchID != 0 {
		sendError(sess, "already in a match")
		return
	}

	var msg packet.PracticeMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			sendError(sess, "bad request")
			return
		}
	}

	entry := deps.Bots.Default()
	if msg.Bot != "" {
		entry = deps.Bots.Get(msg.Bot)
		if entry == nil {
			sendError(sess, "unknown bot")
			return
		}
	}
	// Roster names a personality that never registered (file missing or
	// load error): fall back to the built-in chase brain instead of
	// refusing the game.
	script := entry.Name
	if deps.Scripting == nil || !deps.Scripting.Has(entry.Name) {
		script = ""
	}

	human := world.SeatConfig{
		SessionID: p.SessionID,
		AccountID: p.AccountID,
		Name:      p.Name,
		Rating:    p.Rating,
	}
	bot := world.SeatConfig{Name: entry.Name, Bot: true, Script: script}
	StartMatch(deps, human, bot)
}
