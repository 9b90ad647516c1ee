package http

import (
	"net/http"

	"forgeledger/internal/core"
	"forgeledger/internal/services"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var typ *core.EntryType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := core.EntryType(raw)
		if !t.Valid() {
			writeError(w, r, badRequest("unknown type "+raw))
			return
		}
		typ = &t
	}

	categories, err := s.service.ListCategories(r.Context(), typ)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, badRequest(err.Error()))
		return
	}

	name, typ := "", core.EntryType("")
	if req.Name != nil {
		name = *req.Name
	}
	if req.Type != nil {
		typ = core.EntryType(*req.Type)
	}

	category, err := s.service.CreateCategory(r.Context(), name, typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.service.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, badRequest(err.Error()))
		return
	}

	update := services.CategoryUpdate{Name: req.Name}
	if req.Type != nil {
		typ := core.EntryType(*req.Type)
		update.Type = &typ
	}

	category, err := s.service.UpdateCategory(r.Context(), id, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.service.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
