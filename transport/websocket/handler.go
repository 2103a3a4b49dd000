package websocket

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/duelgrid/server/game/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Handler upgrades HTTP requests and binds each connection to the game
// service.
type Handler struct {
	service service.GameService
}

// NewHandler creates a WebSocket handler backed by the given service.
func NewHandler(svc service.GameService) *Handler {
	return &Handler{service: svc}
}

// ServeHTTP handles WebSocket requests from clients.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := newClient(conn)

	clientID, err := h.service.Connect(client)
	if err != nil {
		log.Printf("Failed to admit client: %v", err)
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h.service, clientID)
}
