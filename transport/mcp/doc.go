// Package mcp provides a Model Context Protocol interface to the
// matchmaking server.
//
// The package is a thin client: every tool call is proxied to the REST
// API, so the MCP surface stays read-only and never touches game state
// directly.
//
// MCP Tools:
//   - server_stats: connected client, waiting queue, and active session counts
//   - list_sessions: list all active game sessions
//   - get_session: board and turn state for one session
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: direct stdio communication for local MCP clients
//   - HTTP: the /mcp endpoint on the main server
//
// Usage:
//
//	// Stdio mode
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	http.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
//		// decode JSON-RPC message, then:
//		client.GetMCPServer().HandleMessage(r.Context(), message)
//	})
package mcp
