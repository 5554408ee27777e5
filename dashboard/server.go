package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
)

var busReady int32

// server wires an HTTP mux to a WebSocket hub. The bus subscriptions that
// feed the hub belong to observer, not to server.
type server struct {
	hub *hub
}

func newServer() *server {
	return &server{hub: newHub()}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	return mux
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[dashboard] upgrade error: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 256), hub: s.hub}
	s.hub.register <- c

	s.hub.broadcastFrame("status", map[string]string{"status": "connected"})

	go c.writePump()
	c.readPump()
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"clients": len(s.hub.clients),
	})
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	ready := atomic.LoadInt32(&busReady) == 1
	w.Header().Set("Content-Type", "application/json")
	if ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ready":     ready,
		"bus_ready": ready,
	})
}

func writeCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
