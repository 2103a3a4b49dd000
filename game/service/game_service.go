package service

import (
	"time"

	"github.com/duelgrid/server/game/registry"
)

// ValidationError marks malformed client input. It is surfaced to the
// originating client as an error notice.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// GameStateError marks a well-formed request that is inconsistent with
// the current session or turn state. It is logged and ignored.
type GameStateError string

func (e GameStateError) Error() string { return string(e) }

// GameService defines all operations of the matchmaking server core.
type GameService interface {
	// Connect admits a new client: assigns a fresh id, registers the
	// sender, sends the connected notice and schedules the deferred
	// auto-search. Returns the assigned client id.
	Connect(sender registry.Sender) (string, error)

	// HandleMessage routes one inbound frame from a client. Errors are
	// converted into notices here and never propagate.
	HandleMessage(clientID string, data []byte)

	// Register stores a client's display name.
	Register(clientID, username string) error

	// FindGame runs one matchmaking attempt for the client: pair with
	// the earliest waiting client, or enter the waiting list.
	FindGame(clientID string)

	// Move validates and applies a move for the client's session.
	Move(clientID string, row, col int) error

	// Disconnect removes the client from registry, waiting list and
	// session store in one atomic step.
	Disconnect(clientID string)

	// Stats reports current registry/queue/store counts.
	Stats() Stats

	// ListSessions returns snapshots of all active sessions.
	ListSessions() []SessionInfo

	// GetSession returns a snapshot of one session.
	GetSession(id string) (*SessionInfo, error)
}

// Config carries the matchmaking timings. Tests shrink these to keep
// timer-driven paths fast.
type Config struct {
	// AutoMatchDelay is how long after connect the automatic FindGame
	// fires, giving the client time to register first.
	AutoMatchDelay time.Duration
	// SearchTimeout is how long a client may wait for an opponent
	// before being dropped from the waiting list.
	SearchTimeout time.Duration
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		AutoMatchDelay: 1 * time.Second,
		SearchTimeout:  10 * time.Second,
	}
}
