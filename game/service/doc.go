// Package service is the event router for the matchmaking server.
//
// It dispatches inbound client events (register, findGame, move) to the
// connection registry, the matchmaking queue and the session store, and
// turns their results into outbound notices. All state mutation funnels
// through a single service mutex, so a disconnect removes a client from
// registry, queue and session store atomically with respect to pairing
// attempts and timer firings.
//
// Error handling follows a two-kind taxonomy:
//
//   - ValidationError: malformed client input (bad username, bad move
//     coordinates, unknown message type, missing required field). These
//     are converted into a single "error" notice sent back to the
//     originating client only.
//   - GameStateError: a well-formed request that is inconsistent with
//     current session or turn state (no active session, not the sender's
//     turn). These are legitimate races and are logged and ignored.
//
// Neither kind ever terminates a connection or touches other clients'
// state.
//
// Timers (the 1 second auto-search after connect and the 10 second
// search timeout) re-check the authoritative state under the service
// mutex before acting; a timer whose client has since disconnected or
// been matched is a guaranteed no-op.
package service
