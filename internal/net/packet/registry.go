package packet

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// SessionState represents the session's current protocol phase.
type SessionState int

const (
	StateAuth          SessionState = iota // connected, awaiting register/login/rejoin
	StateLobby                             // authenticated, idle or queued
	StateMatch                             // seated in a running match
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateAuth:
		return "Auth"
	case StateLobby:
		return "Lobby"
	case StateMatch:
		return "Match"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for envelope handlers.
// The session pointer is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(sess any, data json.RawMessage)

// BinaryFunc is the callback signature for binary frame handlers.
type BinaryFunc func(sess any, r *Reader)

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[SessionState]bool
}

type binaryEntry struct {
	fn            BinaryFunc
	allowedStates map[SessionState]bool
}

// Registry routes inbound messages to handlers with state-based access
// control. Text frames carry JSON envelopes keyed by message type; binary
// frames carry a 1-byte marker followed by a compact payload.
type Registry struct {
	handlers map[string]*handlerEntry
	binary   map[byte]*binaryEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]*handlerEntry),
		binary:   make(map[byte]*binaryEntry),
		log:      log,
	}
}

// Register maps a message type to a handler, restricted to the given session states.
func (reg *Registry) Register(msgType string, states []SessionState, fn HandlerFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[msgType] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// RegisterBinary maps a binary frame marker to a handler.
func (reg *Registry) RegisterBinary(marker byte, states []SessionState, fn BinaryFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.binary[marker] = &binaryEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Dispatch routes one inbound message. Binary frames are recognized by their
// marker byte; everything else is parsed as a JSON envelope. Returns an error
// for malformed messages or state violations.
func (reg *Registry) Dispatch(sess any, state SessionState, raw []byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty message")
	}

	// JSON text always starts with '{'; binary frames never do.
	if raw[0] != '{' {
		return reg.dispatchBinary(sess, state, raw)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("parse envelope: %w", err)
	}

	entry, ok := reg.handlers[env.T]
	if !ok {
		reg.log.Debug("未知訊息類型", zap.String("type", env.T), zap.String("state", state.String()))
		return nil // silently ignore unknown message types
	}

	if !entry.allowedStates[state] {
		reg.log.Warn("訊息在此狀態下不允許",
			zap.String("type", env.T),
			zap.String("state", state.String()),
		)
		return fmt.Errorf("message %q not allowed in state %s", env.T, state)
	}

	return reg.safeCall(env.T, func() { entry.fn(sess, env.Data) })
}

func (reg *Registry) dispatchBinary(sess any, state SessionState, raw []byte) error {
	marker := raw[0]
	entry, ok := reg.binary[marker]
	if !ok {
		reg.log.Debug("未知二進位標記", zap.Uint8("marker", marker))
		return nil
	}
	if !entry.allowedStates[state] {
		return fmt.Errorf("binary frame 0x%02X not allowed in state %s", marker, state)
	}
	r := NewReader(raw)
	return reg.safeCall(fmt.Sprintf("0x%02X", marker), func() { entry.fn(sess, r) })
}

// safeCall executes a handler with panic recovery to prevent a single
// bad message from crashing the entire game loop.
func (reg *Registry) safeCall(name string, fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("處理器 panic 已恢復",
				zap.String("msg", name),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for %s: %v", name, rec)
		}
	}()
	fn()
	return nil
}
