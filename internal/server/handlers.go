package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitepages/internal/domain"
	"sitepages/internal/editor"
	"sitepages/internal/service"
)

const homePageKey = "home_page"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.editors.Len(),
	})
}

// ── Public pages ───────────────────────────────────────────

func (s *Server) handleHomePage(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, homePageKey)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, chi.URLParam(r, "pageKey"))
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, pageKey string) {
	html, err := s.pages.RenderHTML(r.Context(), pageKey)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		status := statusFor(err)
		if status >= 500 {
			s.log.Error().Err(err).Str("page_key", pageKey).Msg("page render failed")
		}
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html)
}

// ── Page API ───────────────────────────────────────────────

func (s *Server) handleBlockTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Descriptors())
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.pages.List(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if pages == nil {
		pages = []domain.PageSummary{}
	}
	writeJSON(w, http.StatusOK, pages)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	doc, err := s.pages.Document(r.Context(), chi.URLParam(r, "pageKey"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleRenderPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.pages.Render(r.Context(), chi.URLParam(r, "pageKey"))
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ── Editor sessions ────────────────────────────────────────

type openSessionRequest struct {
	PageKey string `json:"pageKey"`
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.PageKey == "" {
		writeError(w, http.StatusBadRequest, errors.New("pageKey is required"))
		return
	}
	st, err := s.editors.Open(r.Context(), req.PageKey)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.editors.List())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.writeSession(w, http.StatusOK, chi.URLParam(r, "sessionID"))
}

// writeSession responds with the current state of a session.
func (s *Server) writeSession(w http.ResponseWriter, status int, sessionID string) {
	st, err := s.editors.Get(sessionID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, status, st)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.editors.Close(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addBlockRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleAddBlock(w http.ResponseWriter, r *http.Request) {
	var req addBlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	b, err := s.editors.AddBlock(chi.URLParam(r, "sessionID"), domain.BlockType(req.Type))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	err := s.editors.RemoveBlock(chi.URLParam(r, "sessionID"), chi.URLParam(r, "blockID"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.editors.UpdateBlockData(sessionID, chi.URLParam(r, "blockID"), fields); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.writeSession(w, http.StatusOK, sessionID)
}

type moveBlockRequest struct {
	Direction string `json:"direction"`
}

type moveBlockResponse struct {
	Moved   bool                 `json:"moved"`
	Session service.SessionState `json:"session"`
}

func (s *Server) handleMoveBlock(w http.ResponseWriter, r *http.Request) {
	var req moveBlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dir, err := editor.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	moved, err := s.editors.MoveBlock(sessionID, chi.URLParam(r, "blockID"), dir)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	st, err := s.editors.Get(sessionID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, moveBlockResponse{Moved: moved, Session: st})
}

func (s *Server) handleUpdateMeta(w http.ResponseWriter, r *http.Request) {
	var patch editor.MetaPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.editors.UpdateMeta(sessionID, patch); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.writeSession(w, http.StatusOK, sessionID)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	err := s.editors.Commit(r.Context(), sessionID)
	if err == nil {
		s.writeSession(w, http.StatusOK, sessionID)
		return
	}

	var commitErr *editor.CommitError
	if !errors.As(err, &commitErr) {
		writeError(w, statusFor(err), err)
		return
	}
	body := errorBody{Error: fmt.Sprintf("save failed: %v", commitErr.Err)}
	if st, getErr := s.editors.Get(sessionID); getErr == nil {
		body.Session = &st
	}
	writeJSON(w, http.StatusBadGateway, body)
}
