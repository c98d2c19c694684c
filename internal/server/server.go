package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/widingmarcus-cyber/mindgardener/internal/assemble"
	"github.com/widingmarcus-cyber/mindgardener/internal/engine"
)

// Server is the read-only HTTP API over a memory workspace. Writes go
// through the CLI; the API exists so other agents can recall.
type Server struct {
	eng     *engine.Engine
	asm     *assemble.Assembler
	router  chi.Router
	version string
	started time.Time
	now     func() time.Time // per-request clock; started is only for uptime
}

// New creates a new Server over an engine.
func New(eng *engine.Engine, version string) *Server {
	s := &Server{
		eng:     eng,
		asm:     assemble.New(eng.WS, eng.Entities, eng.Graph),
		version: version,
		started: time.Now(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/context", s.handleContext)
		r.Get("/recall", s.handleRecall)
		r.Get("/entities", s.handleEntities)
		r.Get("/entities/{name}", s.handleEntity)
		r.Get("/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	wsOK := true
	if _, err := os.Stat(s.eng.WS.EntitiesDir); err != nil {
		wsOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"version":   s.version,
		"uptime":    time.Since(s.started).Seconds(),
		"workspace": s.eng.WS.Root,
		"memory":    wsOK,
	})
}
