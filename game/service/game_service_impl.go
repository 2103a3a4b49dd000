package service

import (
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/duelgrid/server/game/engine"
	"github.com/duelgrid/server/game/matchmaking"
	"github.com/duelgrid/server/game/registry"
	"github.com/duelgrid/server/game/session"
	"github.com/duelgrid/server/protocol"
)

// Client-facing notice texts.
const (
	searchingMessage     = "Finding opponent..."
	searchTimeoutMessage = "No opponents available at the moment. Please try again later."
	opponentLeftMessage  = "Your opponent has left the game."
)

// gameService implements the GameService interface.
type gameService struct {
	cfg      Config
	registry *registry.Registry
	queue    *matchmaking.Queue
	sessions *session.Manager

	// mu serializes all event processing (inbound messages, timer
	// firings, disconnects) so composite operations are atomic.
	mu sync.Mutex
}

// NewGameService creates the event router over the given stores.
func NewGameService(cfg Config, reg *registry.Registry, queue *matchmaking.Queue, sessions *session.Manager) GameService {
	return &gameService{
		cfg:      cfg,
		registry: reg,
		queue:    queue,
		sessions: sessions,
	}
}

// Connect admits a new client and schedules the deferred auto-search.
func (s *gameService) Connect(sender registry.Sender) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	if err := s.registry.Register(id, sender); err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.registry.Send(id, protocol.NewConnected(id))
	s.mu.Unlock()

	log.Printf("Client connected: %s", id)

	// Give the client a moment to register before auto-searching. The
	// callback re-checks that the client is still around.
	time.AfterFunc(s.cfg.AutoMatchDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.findMatchLocked(id)
	})

	return id, nil
}

// HandleMessage routes one inbound frame and converts errors to notices.
func (s *gameService) HandleMessage(clientID string, data []byte) {
	msg, err := protocol.ParseClientMessage(data)
	if err != nil {
		log.Printf("Error handling message from %s: %v", clientID, err)
		return
	}

	if err := s.dispatch(clientID, msg); err != nil {
		var stateErr GameStateError
		if errors.As(err, &stateErr) {
			log.Printf("Ignored %s from %s: %v", msg.Type, clientID, err)
			return
		}
		s.registry.Send(clientID, protocol.NewError(err.Error()))
		log.Printf("Rejected %s from %s: %v", msg.Type, clientID, err)
	}
}

// dispatch maps an inbound message to the matching operation.
func (s *gameService) dispatch(clientID string, msg protocol.ClientMessage) error {
	switch msg.Type {
	case protocol.TypeRegister:
		if msg.Username == "" {
			return ValidationError("Username is required")
		}
		if err := s.Register(clientID, msg.Username); err != nil {
			return err
		}
		s.FindGame(clientID)
		return nil

	case protocol.TypeFindGame:
		s.FindGame(clientID)
		return nil

	case protocol.TypeMove:
		row, col, err := moveCoords(msg)
		if err != nil {
			return err
		}
		return s.Move(clientID, row, col)

	default:
		return ValidationError("Unknown message type")
	}
}

// moveCoords extracts and validates move coordinates. Missing fields,
// wrongly typed values (nil after parsing), non-integer numbers and
// out-of-range values are all malformed input.
func moveCoords(msg protocol.ClientMessage) (int, int, error) {
	if msg.Row == nil || msg.Col == nil {
		return 0, 0, ValidationError("Invalid move coordinates")
	}
	r, c := *msg.Row, *msg.Col
	if r != math.Trunc(r) || c != math.Trunc(c) {
		return 0, 0, ValidationError("Invalid move coordinates")
	}
	row, col := int(r), int(c)
	if !engine.ValidCoords(row, col) {
		return 0, 0, ValidationError("Invalid move coordinates")
	}
	return row, col, nil
}

// Register stores the client's display name.
func (s *gameService) Register(clientID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.SetName(clientID, username); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			// Disconnect raced the register message; nothing to do.
			return nil
		}
		return ValidationError(err.Error())
	}

	log.Printf("Client %s registered as %q", clientID, username)
	return nil
}

// FindGame runs one matchmaking attempt for the client.
func (s *gameService) FindGame(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findMatchLocked(clientID)
}

// findMatchLocked is the pairing algorithm. Callers hold s.mu.
func (s *gameService) findMatchLocked(clientID string) {
	if !s.registry.Exists(clientID) {
		return
	}
	if _, err := s.sessions.ForClient(clientID); err == nil {
		// Already in a game; a client with an active session never
		// enters the waiting set.
		return
	}

	s.registry.Send(clientID, protocol.NewSearching(searchingMessage))

	if s.queue.Contains(clientID) {
		return
	}

	opponentID, ok := s.queue.Pop()
	if !ok {
		s.queue.Add(clientID)
		log.Printf("Matchmaking: %s added to waiting list %v", clientID, s.queue.IDs())

		id := clientID
		time.AfterFunc(s.cfg.SearchTimeout, func() {
			s.searchTimeout(id)
		})
		return
	}

	opponentName, ok := s.registry.Name(opponentID)
	if !ok {
		// The selected opponent disconnected before pairing. Drop the
		// attempt; the caller has to issue findGame again.
		log.Printf("Matchmaking: opponent %s vanished before pairing, dropping attempt for %s", opponentID, clientID)
		return
	}
	callerName, _ := s.registry.Name(clientID)

	// The earliest waiter opens the game as X; the caller joins as O.
	sess := s.sessions.Create(opponentID, clientID)
	s.registry.Send(opponentID, protocol.NewGameStart(sess.ID, callerName, string(engine.X)))
	s.registry.Send(clientID, protocol.NewGameStart(sess.ID, opponentName, string(engine.O)))

	log.Printf("Game %s started: %s (X) vs %s (O)", sess.ID, opponentID, clientID)
}

// searchTimeout fires when a waiting client's search window closes. If
// the client was matched or disconnected in the meantime the removal
// fails and the timer is a no-op.
func (s *gameService) searchTimeout(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.queue.Remove(clientID) {
		return
	}
	s.registry.Send(clientID, protocol.NewSearchTimeout(searchTimeoutMessage))
	log.Printf("Matchmaking: %s removed from waiting list (timeout), waiting %v", clientID, s.queue.IDs())
}

// Move validates and applies one move, then relays it to both
// participants with a per-recipient nextTurn flag.
func (s *gameService) Move(clientID string, row, col int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.sessions.ApplyMove(clientID, row, col)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrNotYourTurn):
			return GameStateError(err.Error())
		case errors.Is(err, session.ErrCellOccupied):
			return ValidationError(err.Error())
		}
		return err
	}

	for _, playerID := range result.Players {
		s.registry.Send(playerID, protocol.NewMoveUpdate(
			result.Row, result.Col, string(result.Symbol), result.NextTurn == playerID))
	}
	return nil
}

// Disconnect removes the client everywhere in one serialized step.
func (s *gameService) Disconnect(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.Exists(clientID) {
		return
	}
	s.registry.Remove(clientID)

	if s.queue.Remove(clientID) {
		log.Printf("Matchmaking: %s removed from waiting list (disconnect), waiting %v", clientID, s.queue.IDs())
	}

	if sess, ok := s.sessions.EndForClient(clientID); ok {
		if opponentID, found := sess.Opponent(clientID); found {
			s.registry.Send(opponentID, protocol.NewOpponentLeft(opponentLeftMessage))
		}
		log.Printf("Game %s ended: %s disconnected", sess.ID, clientID)
	}

	log.Printf("Client disconnected: %s", clientID)
}

// Stats reports current counts for the inspection API.
func (s *gameService) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Connected:      s.registry.Count(),
		Waiting:        s.queue.Len(),
		ActiveSessions: s.sessions.Count(),
	}
}

// ListSessions returns snapshots of all active sessions.
func (s *gameService) ListSessions() []SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, snapshot(sess))
	}
	return result
}

// GetSession returns a snapshot of one session.
func (s *gameService) GetSession(id string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	info := snapshot(sess)
	return &info, nil
}

// snapshot copies session state for read-only consumers. Callers hold
// s.mu, so the copy is consistent with respect to concurrent moves.
func snapshot(sess *session.Session) SessionInfo {
	return SessionInfo{
		ID:          sess.ID,
		Players:     sess.Players,
		CurrentTurn: sess.CurrentTurn,
		Board:       sess.Board,
		CreatedAt:   sess.CreatedAt,
	}
}
