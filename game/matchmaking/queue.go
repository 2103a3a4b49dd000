// Package matchmaking holds the ordered waiting list of clients seeking
// an opponent. Pairing is strict FIFO by insertion order; that is the
// only ordering rule. Search timeouts are scheduled by the game service,
// which re-checks membership here before acting, so the queue itself
// stays a plain data structure.
package matchmaking

import "sync"

// Queue is the waiting set. A client id appears at most once.
type Queue struct {
	mu      sync.Mutex
	order   []string
	present map[string]bool
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{present: make(map[string]bool)}
}

// Add inserts a client at the back of the waiting list. Reports false if
// the client is already waiting.
func (q *Queue) Add(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.present[id] {
		return false
	}
	q.order = append(q.order, id)
	q.present[id] = true
	return true
}

// Pop removes and returns the earliest-inserted waiting client.
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.order) == 0 {
		return "", false
	}
	id := q.order[0]
	q.order = q.order[1:]
	delete(q.present, id)
	return id, true
}

// Remove takes a client out of the waiting list. Idempotent; reports
// whether the client was actually waiting, which timer callbacks use as
// their presence re-check.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.present[id] {
		return false
	}
	delete(q.present, id)
	for i, waiting := range q.order {
		if waiting == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether the client is currently waiting.
func (q *Queue) Contains(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.present[id]
}

// Len returns the number of waiting clients.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.order)
}

// IDs returns the waiting client ids in insertion order.
func (q *Queue) IDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids := make([]string, len(q.order))
	copy(ids, q.order)
	return ids
}
