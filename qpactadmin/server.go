// Package qpactadmin exposes a read-only HTTP introspection surface over a
// running Framework, grounded on go-chi/chi/v5 the way the rest of this
// ecosystem's services route HTTP (chi is the weakest domain fit among
// qpact's third-party stack — qpact's core is explicitly transport-free —
// so this package is kept separate and entirely optional; see
// SPEC_FULL.md §3 for the rationale).
package qpactadmin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/qpact/qpact"
)

// Server answers /healthz, /active (the priority slot table with each
// active object's queue depth and high-water mark), and /timers (every
// currently armed TimeEvt). It never accepts a request that would mutate
// framework state — introspection only.
type Server struct {
	fw     *qpact.Framework
	router chi.Router
}

// NewServer builds a Server over fw. The caller mounts Server.Router() or
// calls ListenAndServe directly.
func NewServer(fw *qpact.Framework) *Server {
	s := &Server{fw: fw, router: chi.NewRouter()}
	s.router.Use(middleware.Recoverer)
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/active", s.handleActive)
	s.router.Get("/timers", s.handleTimers)
	return s
}

// Router returns the underlying chi.Router for mounting under a larger
// application's own HTTP server.
func (s *Server) Router() chi.Router { return s.router }

// ListenAndServe starts a standalone HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.fw.Slots())
}

func (s *Server) handleTimers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.fw.ArmedTimers())
}
