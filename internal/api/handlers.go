package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/11vate/balance-sim-go/internal/combat"
	"github.com/11vate/balance-sim-go/internal/sim"
	"github.com/11vate/balance-sim-go/internal/store"
)

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// persist saves a finished run when a store is configured. Persistence
// failures are logged, not surfaced: the result is already computed and the
// caller should get it.
func (s *Server) persist(res *sim.Result, scenario string) {
	if s.db == nil {
		return
	}
	run, insights, err := store.FromResult(res, scenario)
	if err == nil {
		err = s.db.SaveRun(run, insights)
	}
	if err != nil {
		s.logger.Warn("persist run", zap.String("run_id", res.ID), zap.Error(err))
	}
}

func (s *Server) handleSimulateCombat(w http.ResponseWriter, r *http.Request) {
	var req sim.CombatRequest
	if err := decode(r, &req); err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	result, err := s.runner.RunCombat(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.persist(result, r.URL.Query().Get("scenario"))
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSimulateEconomy(w http.ResponseWriter, r *http.Request) {
	var req sim.EconomyRequest
	if err := decode(r, &req); err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	result, err := s.runner.RunEconomy(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.persist(result, r.URL.Query().Get("scenario"))
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req sim.SweepRequest
	if err := decode(r, &req); err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	result, err := s.runner.RunSweep(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.persist(result, r.URL.Query().Get("scenario"))
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"policies": combat.ListPolicies()})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, store.ErrRunNotFound)
		return
	}

	q := store.RunsQuery{Type: r.URL.Query().Get("type")}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		q.Page = page
	}
	if perPage, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil {
		q.PerPage = perPage
	}

	list, err := s.db.ListRuns(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, store.ErrRunNotFound)
		return
	}

	id := chi.URLParam(r, "id")
	run, err := s.db.GetRun(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	insights, err := s.db.GetInsights(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"run": run, "insights": insights})
}
