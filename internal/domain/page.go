package domain

import "context"

// PageStore is the persistence gateway for page documents.
type PageStore interface {
	// Get returns the document stored at pageKey.
	// Returns nil and nil error if no document exists yet.
	Get(ctx context.Context, pageKey string) (*PageDocument, error)

	// Put replaces the document at pageKey, creating it if absent.
	Put(ctx context.Context, pageKey string, doc PageDocument) error
}

// PageLister enumerates stored pages.
type PageLister interface {
	List(ctx context.Context) ([]PageSummary, error)
}

// SEODefaults is the fallback metadata for a page key whose stored
// document leaves seo fields empty.
type SEODefaults struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}
