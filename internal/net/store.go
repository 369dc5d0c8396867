package net

// SessionStore tracks live sessions for the game loop. Accessed only from
// the game loop goroutine, so a plain map is enough.
type SessionStore struct {
	sessions map[uint64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uint64]*Session)}
}

func (st *SessionStore) Add(sess *Session) {
	st.sessions[sess.ID] = sess
}

func (st *SessionStore) Remove(id uint64) {
	delete(st.sessions, id)
}

func (st *SessionStore) Get(id uint64) *Session {
	return st.sessions[id]
}

// Raw exposes the underlying map for iteration. Callers must not retain it.
func (st *SessionStore) Raw() map[uint64]*Session {
	return st.sessions
}

func (st *SessionStore) ForEach(fn func(*Session)) {
	for _, sess := range st.sessions {
		fn(sess)
	}
}

func (st *SessionStore) Len() int {
	return len(st.sessions)
}
