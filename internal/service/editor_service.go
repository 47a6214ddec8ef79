package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sitepages/internal/blocks"
	"sitepages/internal/domain"
	"sitepages/internal/editor"
)

var (
	ErrSessionNotFound  = errors.New("editor session not found")
	ErrCommitInProgress = errors.New("commit already in progress")
	ErrBlockNotFound    = errors.New("block not found")
)

// ─────────────────────────────────────────────────────────────
// Editor Service: editing sessions over page documents
// ─────────────────────────────────────────────────────────────

// SessionState is the externally visible state of one editing session.
type SessionState struct {
	ID            string              `json:"id"`
	PageKey       string              `json:"pageKey"`
	Document      domain.PageDocument `json:"document"`
	HasChanges    bool                `json:"hasChanges"`
	UnknownBlocks []string            `json:"unknownBlocks"`
	OpenedAt      time.Time           `json:"openedAt"`
	LastUsed      time.Time           `json:"lastUsed"`
}

type session struct {
	id       string
	editor   *editor.Editor
	openedAt time.Time
	lastUsed time.Time
}

// EditorService keeps editor sessions keyed by id. Each session owns an
// independent working copy; commits are last-write-wins across sessions.
type EditorService struct {
	store    domain.PageStore
	registry *blocks.Registry
	emitter  EventEmitter
	log      zerolog.Logger
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	commits  commitGuard
}

// EditorServiceOptions configures an EditorService.
type EditorServiceOptions struct {
	SessionTTL time.Duration // idle lifetime, default 2h
	Emitter    EventEmitter
	Logger     zerolog.Logger
	Now        func() time.Time
}

// NewEditorService creates an EditorService.
func NewEditorService(store domain.PageStore, registry *blocks.Registry, opts EditorServiceOptions) *EditorService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Emitter == nil {
		opts.Emitter = NewLogEmitter(opts.Logger)
	}
	return &EditorService{
		store:    store,
		registry: registry,
		emitter:  opts.Emitter,
		log:      opts.Logger.With().Str("component", "editor").Logger(),
		ttl:      opts.SessionTTL,
		now:      opts.Now,
		sessions: make(map[string]*session),
	}
}

// Registry returns the block registry sessions validate against.
func (s *EditorService) Registry() *blocks.Registry { return s.registry }

// Open starts a session on pageKey.
func (s *EditorService) Open(ctx context.Context, pageKey string) (SessionState, error) {
	if pageKey == "" {
		return SessionState{}, fmt.Errorf("open page: empty page key")
	}
	ed, err := editor.Load(ctx, s.store, s.registry, pageKey)
	if err != nil {
		return SessionState{}, err
	}
	now := s.now()
	sess := &session{id: uuid.NewString(), editor: ed, openedAt: now, lastUsed: now}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	if unknown := ed.UnknownBlocks(); len(unknown) > 0 {
		s.log.Warn().Str("page_key", pageKey).Strs("block_ids", unknown).Msg("page has blocks of unknown type")
	}
	s.emitter.Emit(ctx, EventSessionOpened, map[string]string{"sessionId": sess.id, "pageKey": pageKey})
	return s.state(sess), nil
}

// lookup returns the session and marks it used.
func (s *EditorService) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.lastUsed = s.now()
	return sess, nil
}

func (s *EditorService) state(sess *session) SessionState {
	s.mu.Lock()
	lastUsed := sess.lastUsed
	s.mu.Unlock()
	unknown := sess.editor.UnknownBlocks()
	if unknown == nil {
		unknown = []string{}
	}
	return SessionState{
		ID:            sess.id,
		PageKey:       sess.editor.PageKey(),
		Document:      sess.editor.Document(),
		HasChanges:    sess.editor.HasChanges(),
		UnknownBlocks: unknown,
		OpenedAt:      sess.openedAt,
		LastUsed:      lastUsed,
	}
}

// Get returns the current state of a session.
func (s *EditorService) Get(id string) (SessionState, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionState{}, err
	}
	return s.state(sess), nil
}

// List returns every open session, oldest first.
func (s *EditorService) List() []SessionState {
	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].openedAt.Before(all[j].openedAt) })
	out := make([]SessionState, len(all))
	for i, sess := range all {
		out[i] = s.state(sess)
	}
	return out
}

// Close discards a session and its unsaved changes.
func (s *EditorService) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if sess.editor.HasChanges() {
		s.log.Info().Str("page_key", sess.editor.PageKey()).Str("session_id", id).Msg("session closed with unsaved changes")
	}
	s.emitter.Emit(ctx, EventSessionClosed, map[string]string{"sessionId": id, "pageKey": sess.editor.PageKey()})
	return nil
}

// AddBlock appends a block of type t to the session's page.
func (s *EditorService) AddBlock(id string, t domain.BlockType) (domain.BlockInstance, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.BlockInstance{}, err
	}
	return sess.editor.AddBlock(t)
}

// RemoveBlock deletes a block. A missing block is ErrBlockNotFound.
func (s *EditorService) RemoveBlock(id, blockID string) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !sess.editor.RemoveBlock(blockID) {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	return nil
}

// MoveBlock moves a block one position. It reports whether the block
// moved; moving past either end is a no-op.
func (s *EditorService) MoveBlock(id, blockID string, dir editor.Direction) (bool, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	if sess.editor.Document().IndexOf(blockID) < 0 {
		return false, fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	return sess.editor.MoveBlock(blockID, dir)
}

// UpdateBlockData merges fields into a block's payload.
func (s *EditorService) UpdateBlockData(id, blockID string, fields map[string]any) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !sess.editor.UpdateBlockData(blockID, fields) {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	return nil
}

// UpdateMeta overwrites the page metadata fields set in patch.
func (s *EditorService) UpdateMeta(id string, patch editor.MetaPatch) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.editor.UpdateDocumentMeta(patch)
	return nil
}

// Commit saves the session's working copy. Only one commit per session
// runs at a time. A failed save keeps the working copy and returns the
// *editor.CommitError.
func (s *EditorService) Commit(ctx context.Context, id string) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !s.commits.TryLock(id) {
		return fmt.Errorf("commit session %s: %w", id, ErrCommitInProgress)
	}
	defer s.commits.Unlock(id)

	pageKey := sess.editor.PageKey()
	if err := sess.editor.Commit(ctx); err != nil {
		s.log.Error().Err(err).Str("page_key", pageKey).Str("session_id", id).Msg("save failed")
		s.emitter.Emit(ctx, EventPageSaveFailed, map[string]string{"sessionId": id, "pageKey": pageKey, "error": err.Error()})
		return err
	}
	s.log.Info().Str("page_key", pageKey).Str("session_id", id).Msg("page saved")
	s.emitter.Emit(ctx, EventPageSaved, map[string]string{"sessionId": id, "pageKey": pageKey})
	return nil
}

// SweepIdle closes sessions idle longer than the session TTL and returns
// how many were closed. Sessions with a commit in flight are kept.
func (s *EditorService) SweepIdle(ctx context.Context) int {
	cutoff := s.now().Add(-s.ttl)
	var expired []string

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) && !s.commits.Running(id) {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	closed := 0
	for _, id := range expired {
		if err := s.Close(ctx, id); err == nil {
			closed++
		}
	}
	if closed > 0 {
		s.log.Info().Int("sessions", closed).Msg("idle sessions closed")
	}
	return closed
}

// Len returns the number of open sessions.
func (s *EditorService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Wait blocks until in-flight commits finish or ctx is cancelled.
func (s *EditorService) Wait(ctx context.Context) {
	s.commits.WaitAll(ctx)
}
