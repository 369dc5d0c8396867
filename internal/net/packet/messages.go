package packet

import "encoding/json"

// Client → Server message types
const (
	MsgRegister   = "register"
	MsgLogin      = "login"
	MsgRejoin     = "rejoin" // token re-auth after a dropped connection
	MsgQueueJoin  = "queue_join"
	MsgQueueLeave = "queue_leave"
	MsgPractice   = "practice" // start a match against a bot
	MsgReady      = "ready"    // start edge: serve the next round
	MsgLeave      = "leave"    // forfeit / leave the current match
	MsgChat       = "chat"
	MsgQuit       = "quit"
)

// Server → Client message types
const (
	MsgAuthOK       = "auth_ok"
	MsgError        = "error"
	MsgQueued       = "queued"
	MsgQueueLeft    = "queue_left"
	MsgMatchStart   = "match_start"
	MsgPhase        = "phase" // phase transition (serve, side won round)
	MsgGoal         = "goal"
	MsgMatchEnd     = "match_end"
	MsgChatRelay    = "chat"
	MsgOpponentLeft = "opponent_left"
)

// Binary frame markers (first byte of a binary websocket message).
const (
	MarkerInput    byte = 0x01 // client → server control frame
	MarkerSnapshot byte = 0x02 // server → client msgpack match snapshot
)

// Control frame flag bits. Left/Right double as fire triggers: the paddle
// only moves vertically, a held horizontal key shoots toward that side.
const (
	FlagUp    byte = 1 << 0
	FlagDown  byte = 1 << 1
	FlagLeft  byte = 1 << 2
	FlagRight byte = 1 << 3
)

// Envelope wraps a JSON text frame in both directions. Inbound handlers
// receive Data raw to avoid a double unmarshal.
type Envelope struct {
	T    string          `json:"t"`
	Data json.RawMessage `json:"data,omitempty"`
}

// OutEnvelope is the outbound counterpart; Data is marshaled in place.
type OutEnvelope struct {
	T    string `json:"t"`
	Data any    `json:"data,omitempty"`
}

// --- Inbound payloads ---

type RegisterMsg struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginMsg struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type RejoinMsg struct {
	Token string `json:"token"`
}

type PracticeMsg struct {
	Bot string `json:"bot,omitempty"` // personality name, empty = default
}

type ChatMsg struct {
	Text string `json:"text"`
}

// --- Outbound payloads ---

type AuthOKMsg struct {
	Name   string `json:"name"`
	Token  string `json:"token"`
	Rating int    `json:"rating"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

type ErrorMsg struct {
	Msg string `json:"msg"`
}

type QueuedMsg struct {
	Position int `json:"pos"`
}

type MatchStartMsg struct {
	MatchID  uint64  `json:"mid"`
	Side     string  `json:"side"` // "left" or "right"
	Opponent string  `json:"opp"`
	FieldW   float32 `json:"fw"`
	FieldH   float32 `json:"fh"`
	WinScore int     `json:"win"`
}

type PhaseMsg struct {
	MatchID uint64 `json:"mid"`
	Phase   string `json:"phase"`
}

type GoalMsg struct {
	MatchID    uint64 `json:"mid"`
	Winner     string `json:"winner"`
	LeftScore  int    `json:"l"`
	RightScore int    `json:"r"`
}

type MatchEndMsg struct {
	MatchID    uint64 `json:"mid"`
	Winner     string `json:"winner"`
	LeftScore  int    `json:"l"`
	RightScore int    `json:"r"`
	Rating     int    `json:"rating"` // recipient's rating after the match
	Delta      int    `json:"delta"`
}

type ChatRelayMsg struct {
	From string `json:"from"`
	Text string `json:"text"`
}

type OpponentLeftMsg struct {
	MatchID uint64 `json:"mid"`
}
