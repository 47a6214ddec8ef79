package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"sitepages/internal/blocks"
	"sitepages/internal/domain"
)

var (
	ErrUnknownBlockType = errors.New("unknown block type")
	ErrInvalidDirection = errors.New("invalid move direction")
)

// Direction is the way a block moves within the page.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// CommitError reports a failed save. The working copy is left intact.
type CommitError struct {
	PageKey string
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit page %s: %v", e.PageKey, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// MetaPatch holds the page metadata fields to overwrite; nil fields are kept.
type MetaPatch struct {
	SEOTitle       *string `json:"seo_title,omitempty"`
	SEODescription *string `json:"seo_description,omitempty"`
}

// NewBlockID returns a fresh block identifier.
func NewBlockID() string {
	return uuid.NewString()
}

// Editor holds the working copy of one page document.
type Editor struct {
	mu       sync.Mutex
	pageKey  string
	store    domain.PageStore
	registry *blocks.Registry
	doc      domain.PageDocument
	baseline []byte
	newID    func() string
}

// Load starts an editing session on pageKey. A page that was never saved
// loads as an empty document.
func Load(ctx context.Context, store domain.PageStore, registry *blocks.Registry, pageKey string) (*Editor, error) {
	stored, err := store.Get(ctx, pageKey)
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", pageKey, err)
	}
	doc := domain.PageDocument{Blocks: []domain.BlockInstance{}}
	if stored != nil {
		doc = stored.Clone()
	}

	e := &Editor{
		pageKey:  pageKey,
		store:    store,
		registry: registry,
		doc:      doc,
		newID:    NewBlockID,
	}
	if e.baseline, err = doc.Canonical(); err != nil {
		return nil, fmt.Errorf("snapshot page %s: %w", pageKey, err)
	}
	return e, nil
}

// PageKey returns the key the editor commits to.
func (e *Editor) PageKey() string { return e.pageKey }

// Document returns a copy of the working document.
func (e *Editor) Document() domain.PageDocument {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// AddBlock appends a block of type t with its default payload.
func (e *Editor) AddBlock(t domain.BlockType) (domain.BlockInstance, error) {
	data, ok := e.registry.DefaultPayload(t)
	if !ok {
		return domain.BlockInstance{}, fmt.Errorf("add block: %w: %s", ErrUnknownBlockType, t)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	b := domain.BlockInstance{ID: e.uniqueID(), Type: t, Data: data}
	e.doc.Blocks = append(e.doc.Blocks, b)
	return b.Clone(), nil
}

func (e *Editor) uniqueID() string {
	for {
		id := e.newID()
		if e.doc.IndexOf(id) < 0 {
			return id
		}
	}
}

// RemoveBlock deletes the block with id. It reports whether a block was removed.
func (e *Editor) RemoveBlock(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.doc.IndexOf(id)
	if i < 0 {
		return false
	}
	e.doc.Blocks = append(e.doc.Blocks[:i], e.doc.Blocks[i+1:]...)
	return true
}

// MoveBlock swaps the block with its neighbour in direction dir.
// It reports whether the order changed; a block at the boundary stays put.
func (e *Editor) MoveBlock(id string, dir Direction) (bool, error) {
	var step int
	switch dir {
	case Up:
		step = -1
	case Down:
		step = 1
	default:
		return false, fmt.Errorf("move block: %w: %q", ErrInvalidDirection, dir)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.doc.IndexOf(id)
	if i < 0 {
		return false, nil
	}
	j := i + step
	if j < 0 || j >= len(e.doc.Blocks) {
		return false, nil
	}
	e.doc.Blocks[i], e.doc.Blocks[j] = e.doc.Blocks[j], e.doc.Blocks[i]
	return true, nil
}

// UpdateBlockData shallow-merges fields into the block's payload.
// Keys not present in fields keep their values. It reports whether the block exists.
func (e *Editor) UpdateBlockData(id string, fields map[string]any) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.doc.IndexOf(id)
	if i < 0 {
		return false
	}
	b := &e.doc.Blocks[i]
	if b.Data == nil {
		b.Data = domain.BlockData{}
	}
	for k, v := range domain.BlockData(fields).Clone() {
		b.Data[k] = v
	}
	return true
}

// UpdateDocumentMeta overwrites the metadata fields set in patch.
func (e *Editor) UpdateDocumentMeta(patch MetaPatch) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if patch.SEOTitle != nil {
		e.doc.SEOTitle = *patch.SEOTitle
	}
	if patch.SEODescription != nil {
		e.doc.SEODescription = *patch.SEODescription
	}
}

// HasChanges reports whether the working copy differs from the last
// loaded or committed document.
func (e *Editor) HasChanges() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.doc.Canonical()
	if err != nil {
		return true
	}
	return !bytes.Equal(current, e.baseline)
}

// UnknownBlocks returns the ids of blocks whose type is not registered.
// They stay editable and removable.
func (e *Editor) UnknownBlocks() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ids []string
	for _, b := range e.doc.Blocks {
		if !e.registry.Has(b.Type) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// Commit replaces the stored document with the working copy. On failure
// the working copy is kept so the save can be retried.
func (e *Editor) Commit(ctx context.Context) error {
	e.mu.Lock()
	snapshot := e.doc.Clone()
	e.mu.Unlock()

	canonical, err := snapshot.Canonical()
	if err != nil {
		return &CommitError{PageKey: e.pageKey, Err: err}
	}
	if err := e.store.Put(ctx, e.pageKey, snapshot); err != nil {
		return &CommitError{PageKey: e.pageKey, Err: err}
	}

	e.mu.Lock()
	e.baseline = canonical
	e.mu.Unlock()
	return nil
}
