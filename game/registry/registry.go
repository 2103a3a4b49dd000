// Package registry tracks live clients and their outbound channels. It
// owns the authoritative count of connected clients and the client→sender
// mapping; sessions and the waiting list reference clients by id only and
// resolve them here at send time.
package registry

import (
	"errors"
	"regexp"
	"sync"

	"github.com/duelgrid/server/protocol"
)

// Sender is one client's outbound channel. Send enqueues a message
// without blocking and reports false when the message was dropped
// (channel full or connection already gone).
type Sender interface {
	Send(msg any) bool
}

// Status tracks whether a client has completed registration.
type Status string

// Client statuses.
const (
	StatusUnregistered Status = "unregistered"
	StatusRegistered   Status = "registered"
)

// Registry errors.
var (
	// ErrDuplicateID means Register was called twice for one id. Ids are
	// generated fresh per connection, so this is a programming error.
	ErrDuplicateID = errors.New("client id already registered")
	// ErrNotFound means the client is not (or no longer) connected.
	ErrNotFound = errors.New("client not found")
	// ErrNameLength rejects usernames outside the allowed length.
	ErrNameLength = errors.New("Username must be between 3 and 20 characters")
	// ErrNameFormat rejects usernames with disallowed characters.
	ErrNameFormat = errors.New("Username can only contain letters, numbers and underscores")
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername checks a display name against the registration rules.
func ValidateUsername(name string) error {
	if len(name) < 3 || len(name) > 20 {
		return ErrNameLength
	}
	if !namePattern.MatchString(name) {
		return ErrNameFormat
	}
	return nil
}

type client struct {
	id     string
	name   string
	status Status
	sender Sender
}

// Registry is the connection registry. All methods are safe for
// concurrent use; outbound sends never block, so holding the lock across
// a broadcast is fine.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{clients: make(map[string]*client)}
}

// Register adds a new client with status unregistered and broadcasts the
// updated user count. A duplicate id fails with ErrDuplicateID.
func (r *Registry) Register(id string, sender Sender) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[id]; exists {
		return ErrDuplicateID
	}
	r.clients[id] = &client{id: id, status: StatusUnregistered, sender: sender}
	r.broadcastCountLocked()
	return nil
}

// SetName stores a validated display name and marks the client
// registered. Re-registering overwrites the previous name.
func (r *Registry) SetName(id, name string) error {
	if err := ValidateUsername(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok {
		return ErrNotFound
	}
	c.name = name
	c.status = StatusRegistered
	return nil
}

// Remove deletes a client and broadcasts the updated user count. Removing
// an absent client is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[id]; !ok {
		return
	}
	delete(r.clients, id)
	r.broadcastCountLocked()
}

// Send delivers a message to one client, best effort. Messages to
// departed clients are silently dropped; disconnect races are expected.
func (r *Registry) Send(id string, msg any) {
	r.mu.RLock()
	c, ok := r.clients[id]
	r.mu.RUnlock()

	if ok {
		c.sender.Send(msg)
	}
}

// Broadcast delivers a message to every connected client, best effort.
func (r *Registry) Broadcast(msg any) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.clients {
		c.sender.Send(msg)
	}
}

// Exists reports whether the client is currently connected.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.clients[id]
	return ok
}

// Name returns the client's display name; empty until registered.
func (r *Registry) Name(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	if !ok {
		return "", false
	}
	return c.name, true
}

// ClientStatus returns the client's registration status.
func (r *Registry) ClientStatus(id string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	if !ok {
		return "", false
	}
	return c.status, true
}

// Count returns the number of currently connected clients.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}

// broadcastCountLocked fans the current count out to every client.
// Fire-and-forget: dropped messages are fine, the count is sent again on
// the next change.
func (r *Registry) broadcastCountLocked() {
	msg := protocol.NewUserCount(len(r.clients))
	for _, c := range r.clients {
		c.sender.Send(msg)
	}
}
