package handler

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/gunpong/server/internal/net"
	"github.com/gunpong/server/internal/net/packet"
	"github.com/gunpong/server/internal/world"
)

const maxChatRunes = 200

// HandleChat relays a lobby chat line to everyone idling in the lobby,
// the sender included so their client renders it from the same path.
// Players seated in a match do not receive lobby chat.
func HandleChat(sess *net.Session, data json.RawMessage, deps *Deps) {
	var msg packet.ChatMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		sendError(sess, "bad request")
		return
	}

	p := deps.World.GetBySession(sess.ID)
	if p == nil {
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	if utf8.RuneCountInString(text) > maxChatRunes {
		sendError(sess, "message too long")
		return
	}

	relay := packet.ChatRelayMsg{From: p.Name, Text: text}
	deps.World.AllPlayers(func(other *world.PlayerInfo) {
		if other.MatchID == 0 {
			other.Session.SendJSON(packet.MsgChatRelay, relay)
		}
	})
}
