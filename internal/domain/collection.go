package domain

import (
	"context"
	"errors"
	"time"
)

// ErrItemNotFound is returned when a collection item does not exist.
var ErrItemNotFound = errors.New("collection item not found")

// CollectionItem is the summary of one item of a bindable entity
// (a news article, a project) as shown by dynamic blocks.
type CollectionItem struct {
	ID          string    `json:"id" bson:"id"`
	Title       string    `json:"title" bson:"title"`
	Slug        string    `json:"slug" bson:"slug"`
	ImageURL    string    `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	Content     string    `json:"content,omitempty" bson:"content,omitempty"`
	PublishedAt time.Time `json:"publishedAt" bson:"published_at"`
}

// CollectionSource returns the most recently published items of an entity.
// A count larger than the number of available items yields fewer items.
type CollectionSource interface {
	QueryRecent(ctx context.Context, entity string, count int) ([]CollectionItem, error)
}
