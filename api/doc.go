// Package api provides the HTTP surface of the matchmaking server.
//
// It exposes:
//   - /ws — the WebSocket endpoint, behind per-source-address admission
//     control (100 new connections per IP per minute, enforced before
//     the upgrade and before any core state exists)
//   - /api/stats, /api/sessions, /api/sessions/{id} — read-only
//     inspection endpoints over the game service
//   - /healthz — liveness probe
//
// The game itself is WebSocket-only; the REST endpoints never mutate
// state.
package api
