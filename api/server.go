package api

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duelgrid/server/game/service"
	"github.com/duelgrid/server/game/session"
	ws "github.com/duelgrid/server/transport/websocket"
)

// Server routes HTTP traffic to the WebSocket endpoint and the
// inspection API.
type Server struct {
	service   service.GameService
	admission *AdmissionLimiter
	router    *mux.Router
}

// NewServer creates an API server over the given service. admission may
// come from NoAdmissionControl for tests.
func NewServer(gameService service.GameService, admission AdmissionConfig) *Server {
	s := &Server{
		service:   gameService,
		admission: NewAdmissionLimiter(admission),
		router:    mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	wsHandler := ws.NewHandler(s.service)
	s.router.Handle("/ws", s.admitted(wsHandler))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// admitted wraps a handler with the per-address connection quota. The
// check runs before the upgrade, so rejected connections never touch
// core state.
func (s *Server) admitted(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		if !s.admission.Allow(host) {
			log.Printf("Connection from %s rejected: admission quota exceeded", host)
			respondError(w, http.StatusTooManyRequests, "Too many connections")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Stats())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.service.ListSessions()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	info, err := s.service.GetSession(vars["id"])
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}
