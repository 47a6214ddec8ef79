package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitepages/internal/domain"
)

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.collections.List())
}

func (s *Server) handleUpsertItem(w http.ResponseWriter, r *http.Request) {
	var item domain.CollectionItem
	if err := decodeJSON(w, r, &item); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	stored, err := s.collections.Upsert(r.Context(), chi.URLParam(r, "entity"), item)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

type publishItemRequest struct {
	Published *bool `json:"published"`
}

func (s *Server) handlePublishItem(w http.ResponseWriter, r *http.Request) {
	var req publishItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Published == nil {
		writeError(w, http.StatusBadRequest, errors.New("published is required"))
		return
	}
	err := s.collections.SetPublished(r.Context(), chi.URLParam(r, "entity"), chi.URLParam(r, "itemID"), *req.Published)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.collections.Delete(r.Context(), chi.URLParam(r, "entity"), chi.URLParam(r, "itemID")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
