package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/duelgrid/server/game/engine"
)

// Store errors.
var (
	// ErrNoSession means no active session contains the client.
	ErrNoSession = errors.New("no active session for client")
	// ErrNotYourTurn means the move came from the participant not
	// holding the turn. Treated as a silent no-op by the router.
	ErrNotYourTurn = errors.New("not this client's turn")
	// ErrCellOccupied rejects a move onto a filled cell. Filled cells
	// are immutable for the session's lifetime.
	ErrCellOccupied = errors.New("Cell is already occupied")
	// ErrNotFound means no session has the given id.
	ErrNotFound = errors.New("session not found")
)

// Session is one two-participant match. Players[0] holds X and moves
// first. Participants are referenced by client id only; the registry
// resolves ids to channels at send time, so session teardown never
// depends on connection teardown ordering.
type Session struct {
	ID          string
	Players     [2]string
	Board       engine.Board
	CurrentTurn string
	CreatedAt   time.Time
}

// SymbolOf returns the symbol assigned to a participant.
func (s *Session) SymbolOf(clientID string) (engine.Symbol, bool) {
	switch clientID {
	case s.Players[0]:
		return engine.X, true
	case s.Players[1]:
		return engine.O, true
	}
	return engine.Empty, false
}

// Opponent returns the other participant's id.
func (s *Session) Opponent(clientID string) (string, bool) {
	switch clientID {
	case s.Players[0]:
		return s.Players[1], true
	case s.Players[1]:
		return s.Players[0], true
	}
	return "", false
}

// holder returns the participant assigned the given symbol.
func (s *Session) holder(symbol engine.Symbol) string {
	if symbol == engine.X {
		return s.Players[0]
	}
	return s.Players[1]
}

// MoveResult is the snapshot broadcast after an accepted move. NextTurn
// is the id of the participant who now holds the turn.
type MoveResult struct {
	GameID   string
	Row, Col int
	Symbol   engine.Symbol
	Players  [2]string
	NextTurn string
}

// Manager owns all active sessions. A client belongs to at most one
// active session at a time; matchmaking guarantees that by construction,
// the manager just indexes it.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byClient map[string]string
}

// NewManager creates an empty session store.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		byClient: make(map[string]string),
	}
}

// Create allocates a session for two distinct clients. first is assigned
// X and the opening turn; second is assigned O.
func (m *Manager) Create(first, second string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := &Session{
		ID:          uuid.NewString(),
		Players:     [2]string{first, second},
		CurrentTurn: first,
		CreatedAt:   time.Now(),
	}
	m.sessions[sess.ID] = sess
	m.byClient[first] = sess.ID
	m.byClient[second] = sess.ID
	return sess
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// ForClient returns the active session containing the client.
func (m *Manager) ForClient(clientID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byClient[clientID]
	if !ok {
		return nil, ErrNoSession
	}
	return m.sessions[id], nil
}

// ApplyMove validates a move against the client's session and applies
// it: the cell is marked with the client's symbol and the turn flips to
// the other participant. Coordinates must already be range-checked.
func (m *Manager) ApplyMove(clientID string, row, col int) (*MoveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byClient[clientID]
	if !ok {
		return nil, ErrNoSession
	}
	sess := m.sessions[id]

	if sess.CurrentTurn != clientID {
		return nil, ErrNotYourTurn
	}
	if sess.Board.Occupied(row, col) {
		return nil, ErrCellOccupied
	}

	symbol, _ := sess.SymbolOf(clientID)
	sess.Board.Place(row, col, symbol)
	next := sess.holder(engine.Other(symbol))
	sess.CurrentTurn = next

	return &MoveResult{
		GameID:   sess.ID,
		Row:      row,
		Col:      col,
		Symbol:   symbol,
		Players:  sess.Players,
		NextTurn: next,
	}, nil
}

// EndForClient removes the session containing the client, if any, and
// returns it so the caller can notify the surviving participant. No
// further moves are ever accepted for a removed session.
func (m *Manager) EndForClient(clientID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byClient[clientID]
	if !ok {
		return nil, false
	}
	sess := m.sessions[id]
	delete(m.sessions, id)
	delete(m.byClient, sess.Players[0])
	delete(m.byClient, sess.Players[1])
	return sess, true
}

// List returns all active sessions.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
