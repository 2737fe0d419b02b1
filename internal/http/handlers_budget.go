package http

import (
	"net/http"
)

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := s.svc.Budgets.Upsert(r.Context(), caller(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(newBudgetResponse(b)).Write(w)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.Budgets.List(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(newBudgetList(budgets)).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := s.svc.Budgets.Update(r.Context(), id, caller(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(newBudgetResponse(b)).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Budgets.Delete(r.Context(), id, caller(r)); err != nil {
		writeError(w, r, err)
		return
	}
	Message("Budget deleted successfully").Write(w)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	q, err := parseStatusQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := s.svc.Budgets.Status(r.Context(), caller(r), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(newBudgetStatusResponse(status)).Write(w)
}
