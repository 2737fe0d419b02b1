package http

import "net/http"

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories.List(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(newCategoryList(cats)).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), caller(r), sanitizeInput(req.Name), req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(newCategoryResponse(c)).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Categories.Delete(r.Context(), id, caller(r)); err != nil {
		writeError(w, r, err)
		return
	}
	Message("Category deleted successfully").Write(w)
}
