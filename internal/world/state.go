package world

import (
	"github.com/gunpong/server/internal/component"
	"github.com/gunpong/server/internal/net"
)

// PlayerInfo holds in-memory data for a logged-in player.
// Accessed only from the game loop goroutine; no locks needed.
type PlayerInfo struct {
	SessionID uint64
	Session   *net.Session
	AccountID int64
	Name      string

	Rating int // Elo, cached from the accounts row on login
	Wins   int
	Losses int

	MatchID uint64 // 0 = not seated in a match
	Queued  bool   // waiting in the lobby queue

	// LastInput is the previous control frame, kept to detect fire-key
	// press edges (a press doubles as the round-start input).
	LastInput component.InputFrame

	// Dirty flag for batch persistence. Set when rating or win/loss tallies
	// change; the rating flush clears it after a successful write.
	Dirty bool
}

// State tracks all logged-in players, the matchmaking queue, and the
// running matches. Single-goroutine access only (game loop).
type State struct {
	bySession map[uint64]*PlayerInfo
	byAccount map[int64]*PlayerInfo
	byName    map[string]*PlayerInfo

	matches     map[uint64]*Match
	matchList   []*Match // all matches (for tick iteration, creation order)
	nextMatchID uint64

	queue []uint64 // lobby queue, session ids in arrival order
}

func NewState() *State {
	return &State{
		bySession: make(map[uint64]*PlayerInfo),
		byAccount: make(map[int64]*PlayerInfo),
		byName:    make(map[string]*PlayerInfo),
		matches:   make(map[uint64]*Match),
	}
}

// AddPlayer registers a logged-in player.
func (s *State) AddPlayer(p *PlayerInfo) {
	s.bySession[p.SessionID] = p
	s.byAccount[p.AccountID] = p
	s.byName[p.Name] = p
}

// RemovePlayer removes a player and clears any queue slot they held.
func (s *State) RemovePlayer(sessionID uint64) *PlayerInfo {
	p, ok := s.bySession[sessionID]
	if !ok {
		return nil
	}
	s.Dequeue(sessionID)
	delete(s.bySession, sessionID)
	delete(s.byAccount, p.AccountID)
	delete(s.byName, p.Name)
	return p
}

// GetBySession returns a player by session ID.
func (s *State) GetBySession(sessionID uint64) *PlayerInfo {
	return s.bySession[sessionID]
}

// GetByAccount returns a player by account DB ID.
func (s *State) GetByAccount(accountID int64) *PlayerInfo {
	return s.byAccount[accountID]
}

// GetByName returns a player by display name.
func (s *State) GetByName(name string) *PlayerInfo {
	return s.byName[name]
}

// PlayerCount returns the number of logged-in players.
func (s *State) PlayerCount() int {
	return len(s.bySession)
}

// AllPlayers iterates all logged-in players.
func (s *State) AllPlayers(fn func(*PlayerInfo)) {
	for _, p := range s.bySession {
		fn(p)
	}
}

// --- Lobby queue ---

// Enqueue adds a player to the matchmaking queue. Players already queued
// or already seated stay where they are.
func (s *State) Enqueue(sessionID uint64) bool {
	p := s.bySession[sessionID]
	if p == nil || p.Queued || p.MatchID != 0 {
		return false
	}
	p.Queued = true
	s.queue = append(s.queue, sessionID)
	return true
}

// Dequeue removes a player from the matchmaking queue.
func (s *State) Dequeue(sessionID uint64) {
	p := s.bySession[sessionID]
	if p != nil {
		p.Queued = false
	}
	for i, sid := range s.queue {
		if sid == sessionID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// PopPair pops the two longest-waiting queued players still connected.
// Stale entries left by disconnects are dropped along the way.
func (s *State) PopPair() (a, b *PlayerInfo, ok bool) {
	for len(s.queue) > 0 {
		p := s.bySession[s.queue[0]]
		if p == nil {
			s.queue = s.queue[1:]
			continue
		}
		if a == nil {
			a = p
			s.queue = s.queue[1:]
			continue
		}
		b = p
		s.queue = s.queue[1:]
		a.Queued = false
		b.Queued = false
		return a, b, true
	}
	// Only one player waiting: put them back at the head.
	if a != nil {
		s.queue = append([]uint64{a.SessionID}, s.queue...)
	}
	return nil, nil, false
}

// QueueLen returns the number of queued session ids, stale entries included.
func (s *State) QueueLen() int {
	return len(s.queue)
}

// EachQueued walks live queue entries in order with their 1-based position.
func (s *State) EachQueued(fn func(pos int, p *PlayerInfo)) {
	pos := 0
	for _, sid := range s.queue {
		p := s.bySession[sid]
		if p == nil || !p.Queued {
			continue
		}
		pos++
		fn(pos, p)
	}
}

// --- Matches ---

// NextMatchID hands out match ids, starting at 1 so 0 can mean "none".
func (s *State) NextMatchID() uint64 {
	s.nextMatchID++
	return s.nextMatchID
}

// AddMatch registers a running match.
func (s *State) AddMatch(m *Match) {
	s.matches[m.ID] = m
	s.matchList = append(s.matchList, m)
}

// GetMatch returns a match by ID.
func (s *State) GetMatch(id uint64) *Match {
	return s.matches[id]
}

// RemoveMatch drops a finished match. (Swap-delete; tick order for the
// remaining matches may change, which is fine, each match owns its RNG.)
func (s *State) RemoveMatch(id uint64) *Match {
	m, ok := s.matches[id]
	if !ok {
		return nil
	}
	delete(s.matches, id)
	for i, mm := range s.matchList {
		if mm.ID == id {
			s.matchList[i] = s.matchList[len(s.matchList)-1]
			s.matchList = s.matchList[:len(s.matchList)-1]
			break
		}
	}
	return m
}

// MatchList returns all running matches for tick iteration.
func (s *State) MatchList() []*Match {
	return s.matchList
}

// MatchCount returns the number of running matches.
func (s *State) MatchCount() int {
	return len(s.matches)
}

// MatchBySession returns the match a session is seated in, or nil.
func (s *State) MatchBySession(sessionID uint64) *Match {
	p := s.bySession[sessionID]
	if p == nil || p.MatchID == 0 {
		return nil
	}
	return s.matches[p.MatchID]
}
