package net

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/gunpong/server/internal/net/packet"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// binarySentinel prefixes OutQueue entries that must go out as binary
	// websocket frames. Stripped by writeLoop, never hits the wire.
	binarySentinel byte = 0xFF
)

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; game state is accessed only from the game loop.
type Session struct {
	ID   uint64
	conn *websocket.Conn

	state atomic.Int32 // packet.SessionState stored as int32

	InQueue  chan []byte // game loop reads messages from here
	OutQueue chan []byte // writer goroutine reads from here

	IP string

	outBuf [][]byte // buffered messages, flushed by OutputSystem (game loop only)

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// Per-second message rate limiter (readLoop goroutine only, no lock needed)
	msgPerSec  int   // max messages/sec (0 = unlimited)
	msgCount   int   // messages received this second
	msgResetAt int64 // unix second of last counter reset

	log *zap.Logger
}

func NewSession(conn *websocket.Conn, id uint64, ip string, inSize, outSize, msgPerSec int, log *zap.Logger) *Session {
	s := &Session{
		ID:        id,
		conn:      conn,
		InQueue:   make(chan []byte, inSize),
		OutQueue:  make(chan []byte, outSize),
		IP:        ip,
		closeCh:   make(chan struct{}),
		msgPerSec: msgPerSec,
		log:       log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateAuth))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a raw outbound message. Nothing is written to the socket
// until FlushOutput is called by OutputSystem at the end of the tick.
// Called only from the game loop goroutine; no lock needed on outBuf.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// SendJSON buffers an envelope as a text frame.
func (s *Session) SendJSON(msgType string, payload any) {
	data, err := json.Marshal(packet.OutEnvelope{T: msgType, Data: payload})
	if err != nil {
		s.log.Error("訊息編碼失敗", zap.String("type", msgType), zap.Error(err))
		return
	}
	s.Send(data)
}

// SendBinary buffers a binary frame: [marker][payload] on the wire.
func (s *Session) SendBinary(marker byte, payload []byte) {
	msg := make([]byte, len(payload)+2)
	msg[0] = binarySentinel
	msg[1] = marker
	copy(msg[2:], payload)
	s.Send(msg)
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop goroutine.
// Non-blocking: if OutQueue is full, the session is disconnected (backpressure;
// a slow consumer loses its connection, not the server its tick budget).
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("輸出佇列已滿，斷開慢速連線")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop runs in its own goroutine. It reads websocket messages and pushes
// them onto InQueue for the game loop to consume.
func (s *Session) readLoop() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("讀取錯誤", zap.Error(err))
			}
			return
		}
		if len(data) == 0 {
			continue
		}

		// Per-second message rate limiter
		if s.msgPerSec > 0 {
			now := time.Now().Unix()
			if now != s.msgResetAt {
				s.msgCount = 0
				s.msgResetAt = now
			}
			s.msgCount++
			if s.msgCount > s.msgPerSec {
				s.log.Warn("訊息速率超限，斷開連線", zap.Int("mps", s.msgCount))
				return
			}
		}

		// Block until InQueue has space or the session closes. Dropping a
		// control frame would desync held-key state until the next change;
		// blocking only stalls this client's readLoop goroutine.
		select {
		case s.InQueue <- data:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop runs in its own goroutine. It reads messages from OutQueue and
// writes them to the websocket, pinging on an interval to keep the
// connection's read deadline fed.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case data := <-s.OutQueue:
			if !s.writeOne(data) {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closeCh:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}

// writeOne writes a single message, routing by the sentinel prefix.
func (s *Session) writeOne(data []byte) bool {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	var err error
	if len(data) > 0 && data[0] == binarySentinel {
		err = s.conn.WriteMessage(websocket.BinaryMessage, data[1:])
	} else {
		err = s.conn.WriteMessage(websocket.TextMessage, data)
	}
	if err != nil {
		if !s.closed.Load() {
			s.log.Debug("寫入錯誤", zap.Error(err))
		}
		return false
	}
	return true
}
