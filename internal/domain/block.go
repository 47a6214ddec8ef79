package domain

import (
	"encoding/json"
	"time"
)

// BlockType tags a block instance with the strategy that renders it.
// Stored documents may carry types that are no longer registered.
type BlockType string

const (
	BlockTypeHero            BlockType = "hero"
	BlockTypeText            BlockType = "text"
	BlockTypeFeatures        BlockType = "features"
	BlockTypeImageText       BlockType = "image_text"
	BlockTypeTimeline        BlockType = "timeline"
	BlockTypeCTA             BlockType = "cta"
	BlockTypeNumberedCards   BlockType = "numbered_cards"
	BlockTypeChecklist       BlockType = "checklist"
	BlockTypeSteps           BlockType = "steps"
	BlockTypeDynamicNews     BlockType = "dynamic_news"
	BlockTypeDynamicProjects BlockType = "dynamic_projects"
)

// BlockData is the open payload of a block. Its shape is owned by the
// block type; every reader supplies its own defaults.
type BlockData map[string]any

// Clone returns a deep copy of the payload.
func (d BlockData) Clone() BlockData {
	if d == nil {
		return nil
	}
	out := make(BlockData, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case BlockData:
		return map[string]any(t.Clone())
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	case []string:
		return append([]string(nil), t...)
	case []map[string]any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

// BlockInstance is one positioned content unit of a page.
type BlockInstance struct {
	ID   string    `json:"id"`
	Type BlockType `json:"type"`
	Data BlockData `json:"data"`
}

// Clone returns a deep copy of the block.
func (b BlockInstance) Clone() BlockInstance {
	return BlockInstance{ID: b.ID, Type: b.Type, Data: b.Data.Clone()}
}

// PageDocument is the persisted representation of one page.
type PageDocument struct {
	Blocks         []BlockInstance `json:"blocks"`
	SEOTitle       string          `json:"seo_title,omitempty"`
	SEODescription string          `json:"seo_description,omitempty"`
}

// Normalize replaces a nil block list with an empty one.
func (d *PageDocument) Normalize() {
	if d.Blocks == nil {
		d.Blocks = []BlockInstance{}
	}
}

// Clone returns a deep copy of the document.
func (d PageDocument) Clone() PageDocument {
	out := PageDocument{
		Blocks:         make([]BlockInstance, len(d.Blocks)),
		SEOTitle:       d.SEOTitle,
		SEODescription: d.SEODescription,
	}
	for i, b := range d.Blocks {
		out.Blocks[i] = b.Clone()
	}
	return out
}

// IndexOf returns the position of the block with the given id, or -1.
func (d PageDocument) IndexOf(id string) int {
	for i, b := range d.Blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Canonical returns a deterministic JSON encoding of the document.
// encoding/json sorts map keys, so equal documents encode to equal bytes.
func (d PageDocument) Canonical() ([]byte, error) {
	c := d.Clone()
	c.Normalize()
	return json.Marshal(c)
}

// PageSummary lists a stored page without its blocks.
type PageSummary struct {
	PageKey    string    `json:"pageKey"`
	BlockCount int       `json:"blockCount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
