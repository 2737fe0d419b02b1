package http

import (
	"net/http"

	"budgetwise/internal/core"
	"budgetwise/internal/services"
)

// transactionRoutes mounts list, add, update and delete for one kind of
// transaction under prefix.
func (s *Server) transactionRoutes(mux *http.ServeMux, prefix string, svc *services.TransactionService, authed func(http.Handler) http.Handler) {
	h := transactionHandlers{svc: svc}
	mux.Handle("GET "+prefix, authed(http.HandlerFunc(h.list)))
	mux.Handle("POST "+prefix, authed(http.HandlerFunc(h.add)))
	mux.Handle("PUT "+prefix+"/{id}", authed(http.HandlerFunc(h.update)))
	mux.Handle("DELETE "+prefix+"/{id}", authed(http.HandlerFunc(h.delete)))
}

type transactionHandlers struct {
	svc *services.TransactionService
}

func (h transactionHandlers) list(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.List(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(newTransactionList(txs)).Write(w)
}

func (h transactionHandlers) add(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := h.svc.Add(r.Context(), caller(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(newTransactionResponse(tx)).Write(w)
}

func (h transactionHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := h.svc.Update(r.Context(), id, caller(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(newTransactionResponse(tx)).Write(w)
}

func (h transactionHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id, caller(r)); err != nil {
		writeError(w, r, err)
		return
	}
	if h.svc.Kind() == core.KindIncome {
		Message("Income deleted successfully").Write(w)
		return
	}
	Message("Expense deleted successfully").Write(w)
}
