// Package health exposes the liveness/readiness HTTP endpoints every
// service in this module serves on its own health port: GET /health
// always answers if the process is alive, GET /ready reports whether
// the bus connection has been established.
package health

import (
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"
)

// Server tracks a single service's bus-readiness flag and serves it over
// HTTP.
type Server struct {
	service   string
	startedAt time.Time
	ready     int32
}

// NewServer constructs a Server reporting as service in its payloads.
func NewServer(service string) *Server {
	return &Server{service: service, startedAt: time.Now()}
}

// SetReady marks the service as having established its bus connection.
func (s *Server) SetReady(ready bool) {
	if ready {
		atomic.StoreInt32(&s.ready, 1)
	} else {
		atomic.StoreInt32(&s.ready, 0)
	}
}

// Start serves /health and /ready on addr in a background goroutine.
func (s *Server) Start(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)

	go func() {
		log.Printf("[%s] health server starting on %s", s.service, addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("[%s] health server error: %v", s.service, err)
		}
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"service": s.service,
		"uptime":  time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ready := atomic.LoadInt32(&s.ready) == 1
	w.Header().Set("Content-Type", "application/json")
	if ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ready":   ready,
		"service": s.service,
	})
}
