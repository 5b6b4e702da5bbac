package service

import "sync"

// Ticket identifies one in-flight evaluation for a session.
type Ticket struct {
	session string
	key     string
	seq     uint64
}

type sessionState struct {
	key      string
	inflight int
}

// Guard tracks the latest inputs each booking session asked about. A result is
// stale once the session has since asked about a different technician, date
// or duration.
type Guard struct {
	mu      sync.Mutex
	seq     uint64
	current map[string]*sessionState
}

func NewGuard() *Guard {
	return &Guard{current: make(map[string]*sessionState)}
}

func (g *Guard) Begin(session, key string) Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.seq++
	st, ok := g.current[session]
	if !ok {
		st = &sessionState{}
		g.current[session] = st
	}
	st.key = key
	st.inflight++
	return Ticket{session: session, key: key, seq: g.seq}
}

// IsCurrent reports whether t's inputs are still the session's latest.
// A repeated request for the same inputs does not supersede an earlier one,
// whichever of the two finishes first.
func (g *Guard) IsCurrent(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.current[t.session]
	return ok && st.key == t.key
}

// Finish releases t. The session entry is dropped once none of its tickets
// are still running.
func (g *Guard) Finish(t Ticket) {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.current[t.session]
	if !ok {
		return
	}
	st.inflight--
	if st.inflight <= 0 {
		delete(g.current, t.session)
	}
}

func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.current)
}
