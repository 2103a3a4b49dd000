// Package protocol defines the tagged JSON messages exchanged with clients.
//
// Both directions use an envelope with a "type" discriminator plus
// type-specific fields. Inbound messages are decoded into ClientMessage;
// outbound notices are plain structs whose Type field is fixed by the
// constructor that builds them.
package protocol

import "encoding/json"

// Inbound message types.
const (
	TypeRegister = "register"
	TypeFindGame = "findGame"
	TypeMove     = "move"
)

// Outbound message types.
const (
	TypeConnected     = "connected"
	TypeUserCount     = "userCount"
	TypeSearching     = "searching"
	TypeGameStart     = "gameStart"
	TypeMoveUpdate    = "move"
	TypeSearchTimeout = "searchTimeout"
	TypeOpponentLeft  = "opponentLeft"
	TypeError         = "error"
)

// ClientMessage is the inbound envelope. Row and Col are nil when the
// field is absent or not a JSON number; the router treats either as a
// malformed coordinate, not a malformed frame.
type ClientMessage struct {
	Type     string
	Username string
	Row      *float64
	Col      *float64
}

// ParseClientMessage decodes one inbound frame. Only an unparseable
// envelope is an error; wrongly typed coordinate fields still produce a
// ClientMessage so the router can answer with an error notice.
func ParseClientMessage(data []byte) (ClientMessage, error) {
	var raw struct {
		Type     string          `json:"type"`
		Username string          `json:"username"`
		Row      json.RawMessage `json:"row"`
		Col      json.RawMessage `json:"col"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return ClientMessage{}, err
	}

	return ClientMessage{
		Type:     raw.Type,
		Username: raw.Username,
		Row:      numberField(raw.Row),
		Col:      numberField(raw.Col),
	}, nil
}

// numberField decodes one coordinate field, nil unless it holds a number.
// JSON null needs the explicit check: unmarshalling null into a float64
// is a no-op, not an error.
func numberField(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

// Connected is sent once, immediately after the connection is accepted.
type Connected struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// NewConnected builds the connection acknowledgement for a client id.
func NewConnected(userID string) Connected {
	return Connected{Type: TypeConnected, UserID: userID}
}

// UserCount carries the current number of connected clients.
type UserCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// NewUserCount builds a user-count broadcast.
func NewUserCount(count int) UserCount {
	return UserCount{Type: TypeUserCount, Count: count}
}

// Searching tells a client that matchmaking has started for it.
type Searching struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewSearching builds a searching notice.
func NewSearching(message string) Searching {
	return Searching{Type: TypeSearching, Message: message}
}

// GameStart tells a client it has been paired.
type GameStart struct {
	Type     string `json:"type"`
	GameID   string `json:"gameId"`
	Opponent string `json:"opponent"`
	Symbol   string `json:"symbol"`
}

// NewGameStart builds a pairing notice.
func NewGameStart(gameID, opponent, symbol string) GameStart {
	return GameStart{Type: TypeGameStart, GameID: gameID, Opponent: opponent, Symbol: symbol}
}

// MoveUpdate relays an accepted move to both participants. NextTurn is
// true for the recipient who now holds the turn.
type MoveUpdate struct {
	Type     string `json:"type"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Symbol   string `json:"symbol"`
	NextTurn bool   `json:"nextTurn"`
}

// NewMoveUpdate builds a move notice for one recipient.
func NewMoveUpdate(row, col int, symbol string, nextTurn bool) MoveUpdate {
	return MoveUpdate{Type: TypeMoveUpdate, Row: row, Col: col, Symbol: symbol, NextTurn: nextTurn}
}

// SearchTimeout tells a waiting client that no opponent was found.
type SearchTimeout struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewSearchTimeout builds a search-timeout notice.
func NewSearchTimeout(message string) SearchTimeout {
	return SearchTimeout{Type: TypeSearchTimeout, Message: message}
}

// OpponentLeft tells the surviving participant that its session ended.
type OpponentLeft struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewOpponentLeft builds an opponent-left notice.
func NewOpponentLeft(message string) OpponentLeft {
	return OpponentLeft{Type: TypeOpponentLeft, Message: message}
}

// ErrorMessage reports a rejected request back to its sender only.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewError builds an error notice.
func NewError(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}
