// Package websocket provides the WebSocket transport for the matchmaking
// server.
//
// Each accepted connection gets a Client with dedicated read and write
// goroutines. The Client implements the registry's Sender contract: an
// outbound message is a non-blocking enqueue onto a buffered channel, and
// a full or closed channel drops the message rather than stalling the
// game core.
//
// Connection Lifecycle:
//
//  1. HTTP request upgraded (admission control happens before this, in
//     the API layer)
//  2. Client handed to the game service, which assigns an id and sends
//     the connected notice
//  3. Inbound JSON frames routed to the service's message handler
//  4. Read error or close triggers the service's disconnect cascade
//
// Message Protocol:
//
// Frames carry one JSON document each, tagged with a "type" field; see
// the protocol package for the message catalogue.
package websocket
