package handler

import (
	"encoding/json"

	"github.com/gunpong/server/internal/config"
	"github.com/gunpong/server/internal/core/event"
	"github.com/gunpong/server/internal/data"
	"github.com/gunpong/server/internal/net"
	"github.com/gunpong/server/internal/net/packet"
	"github.com/gunpong/server/internal/persist"
	"github.com/gunpong/server/internal/scripting"
	"github.com/gunpong/server/internal/world"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all message handlers.
// Handlers run on the game loop goroutine.
type Deps struct {
	Accounts  *persist.AccountRepo
	Config    *config.Config
	Log       *zap.Logger
	World     *world.State
	Tokens    *net.TokenIssuer
	Scripting *scripting.Engine // nil when scripting is disabled
	Bots      *data.BotTable
	Effects   world.Effects
	Bus       *event.Bus
	LoginRate *LoginLimiter
}

// RegisterAll registers all message handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	// Unauthenticated phase
	authStates := []packet.SessionState{packet.StateAuth}

	reg.Register(packet.MsgRegister, authStates,
		func(sess any, data json.RawMessage) {
			HandleRegister(sess.(*net.Session), data, deps)
		},
	)
	reg.Register(packet.MsgLogin, authStates,
		func(sess any, data json.RawMessage) {
			HandleLogin(sess.(*net.Session), data, deps)
		},
	)
	reg.Register(packet.MsgRejoin, authStates,
		func(sess any, data json.RawMessage) {
			HandleRejoin(sess.(*net.Session), data, deps)
		},
	)

	// Lobby phase
	lobbyStates := []packet.SessionState{packet.StateLobby}

	reg.Register(packet.MsgQueueJoin, lobbyStates,
		func(sess any, data json.RawMessage) {
			HandleQueueJoin(sess.(*net.Session), data, deps)
		},
	)
	reg.Register(packet.MsgQueueLeave, lobbyStates,
		func(sess any, data json.RawMessage) {
			HandleQueueLeave(sess.(*net.Session), data, deps)
		},
	)
	reg.Register(packet.MsgPractice, lobbyStates,
		func(sess any, data json.RawMessage) {
			HandlePractice(sess.(*net.Session), data, deps)
		},
	)
	reg.Register(packet.MsgChat, lobbyStates,
		func(sess any, data json.RawMessage) {
			HandleChat(sess.(*net.Session), data, deps)
		},
	)

	// In-match phase
	matchStates := []packet.SessionState{packet.StateMatch}

	reg.Register(packet.MsgReady, matchStates,
		func(sess any, data json.RawMessage) {
			HandleReady(sess.(*net.Session), data, deps)
		},
	)
	reg.Register(packet.MsgLeave, matchStates,
		func(sess any, data json.RawMessage) {
			HandleLeave(sess.(*net.Session), data, deps)
		},
	)
	reg.RegisterBinary(packet.MarkerInput, matchStates,
		func(sess any, r *packet.Reader) {
			HandleInput(sess.(*net.Session), r, deps)
		},
	)

	// Always allowed once connected
	anyStates := []packet.SessionState{
		packet.StateAuth, packet.StateLobby, packet.StateMatch,
	}
	reg.Register(packet.MsgQuit, anyStates,
		func(sess any, data json.RawMessage) {
			HandleQuit(sess.(*net.Session), data, deps)
		},
	)
}

// sendError pushes a uniform error envelope to the session.
func sendError(sess *net.Session, msg string) {
	sess.SendJSON(packet.MsgError, packet.ErrorMsg{Msg: msg})
}
