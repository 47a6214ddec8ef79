package blocks

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	"sitepages/internal/domain"
)

var ErrDuplicateType = errors.New("block type already registered")

// RenderFunc turns a block payload into an HTML fragment. An empty
// fragment with a nil error means the block contributes nothing.
type RenderFunc func(ctx context.Context, data domain.BlockData) (template.HTML, error)

// Descriptor is the registry entry for one block type.
type Descriptor struct {
	Type    domain.BlockType `json:"type"`
	Label   string           `json:"label"`
	Dynamic bool             `json:"dynamic"`
	Entity  string           `json:"entity,omitempty"`
	Fields  []Field          `json:"fields"`

	Default func() domain.BlockData `json:"-"`
	Render  RenderFunc              `json:"-"`
}

// Registry maps block type tags to descriptors.
// Populate it at startup; it is read-only afterwards and needs no locking.
type Registry struct {
	byType map[domain.BlockType]*Descriptor
	order  []domain.BlockType
}

func NewRegistry() *Registry {
	return &Registry{byType: make(map[domain.BlockType]*Descriptor)}
}

// Register adds a descriptor. Types must be unique.
func (r *Registry) Register(d Descriptor) error {
	if d.Type == "" {
		return fmt.Errorf("register block: empty type")
	}
	if d.Render == nil {
		return fmt.Errorf("register block %s: missing render strategy", d.Type)
	}
	if _, exists := r.byType[d.Type]; exists {
		return fmt.Errorf("register block %s: %w", d.Type, ErrDuplicateType)
	}
	if d.Default == nil {
		d.Default = func() domain.BlockData { return domain.BlockData{} }
	}
	r.byType[d.Type] = &d
	r.order = append(r.order, d.Type)
	return nil
}

// MustRegister is Register for startup code; it panics on error.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor for t. A miss is a normal outcome.
func (r *Registry) Lookup(t domain.BlockType) (*Descriptor, bool) {
	d, ok := r.byType[t]
	return d, ok
}

// Has reports whether t is registered.
func (r *Registry) Has(t domain.BlockType) bool {
	_, ok := r.byType[t]
	return ok
}

// DefaultPayload returns a fresh initial payload for t.
func (r *Registry) DefaultPayload(t domain.BlockType) (domain.BlockData, bool) {
	d, ok := r.byType[t]
	if !ok {
		return nil, false
	}
	return d.Default().Clone(), true
}

// RenderStrategy returns the render function for t.
func (r *Registry) RenderStrategy(t domain.BlockType) (RenderFunc, bool) {
	d, ok := r.byType[t]
	if !ok {
		return nil, false
	}
	return d.Render, true
}

// Types lists registered types in registration order.
func (r *Registry) Types() []domain.BlockType {
	return append([]domain.BlockType(nil), r.order...)
}

// Descriptors lists registered descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, *r.byType[t])
	}
	return out
}
