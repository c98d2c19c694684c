package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/widingmarcus-cyber/mindgardener/internal/assemble"
	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
)

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, `{"error":"q required"}`, http.StatusBadRequest)
		return
	}

	opt := assemble.Options{
		Budget:      s.eng.Cfg.Context.TokenBudget,
		RecentDays:  s.eng.Cfg.Context.RecentDays,
		MaxEntities: s.eng.Cfg.Context.MaxEntities,
		Today:       s.now(),
	}
	if v := r.URL.Query().Get("budget"); v != "" {
		budget, err := strconv.Atoi(v)
		if err != nil || budget < 0 {
			http.Error(w, `{"error":"invalid budget"}`, http.StatusBadRequest)
			return
		}
		opt.Budget = budget
	}

	result, err := s.asm.Assemble(query, opt)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"context":  result.Context,
		"manifest": result.Manifest,
	})
}

func (s *Server) handleRecall(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, `{"error":"q required"}`, http.StatusBadRequest)
		return
	}

	rec, err := s.eng.Entities.Get(query)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			// Fall back to a graph substring search before giving up.
			triplets, serr := s.eng.Graph.Search(query)
			if serr != nil {
				http.Error(w, `{"error":"`+serr.Error()+`"}`, http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"entity":   nil,
				"triplets": triplets,
			})
			return
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	neighbors, err := s.eng.Graph.Neighbors(rec.Name)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	// Recall counts as a reference for decay purposes.
	if err := s.eng.Entities.Touch(rec.Name); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"entity":    rec,
		"rendered":  rec.Render(),
		"neighbors": neighbors,
	})
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	var names []string
	var err error
	if r.URL.Query().Get("archived") == "true" {
		names, err = s.eng.Entities.ArchivedNames()
	} else {
		names, err = s.eng.Entities.Names()
	}
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":    len(names),
		"entities": names,
	})
}

func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rec, err := s.eng.Entities.Get(name)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			http.Error(w, `{"error":"entity not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.eng.Stats(s.eng.Cfg.Consolidation.SurpriseThreshold)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
