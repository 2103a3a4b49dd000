package service

import (
	"time"

	"github.com/duelgrid/server/game/engine"
)

// Stats summarizes the server's current load for the inspection API.
type Stats struct {
	Connected      int `json:"connected"`
	Waiting        int `json:"waiting"`
	ActiveSessions int `json:"activeSessions"`
}

// SessionInfo is a read-only snapshot of one active session.
type SessionInfo struct {
	ID          string       `json:"id"`
	Players     [2]string    `json:"players"`
	CurrentTurn string       `json:"currentTurn"`
	Board       engine.Board `json:"board"`
	CreatedAt   time.Time    `json:"createdAt"`
}
