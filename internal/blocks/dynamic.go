package blocks

import (
	"context"
	"html/template"
	"net/url"
	"strings"
	"time"

	"sitepages/internal/domain"
)

// AllowedCounts are the item counts a dynamic block may request.
var AllowedCounts = []int{3, 4, 6}

const defaultCount = 3

// ClampCount maps any requested count onto AllowedCounts.
func ClampCount(n int) int {
	for _, c := range AllowedCounts {
		if n == c {
			return n
		}
	}
	return defaultCount
}

// DynamicList configures a block that lists the most recent items of an entity.
type DynamicList struct {
	Type         domain.BlockType
	Label        string
	Entity       string
	DefaultTitle string
	BasePath     string // item links are BasePath/slug
	AllLabel     string
}

type dynamicItemView struct {
	Title    string
	Href     string
	ImageURL string
	Excerpt  string
	Date     string
	ISODate  string
}

type dynamicListView struct {
	Entity          string
	Title, Subtitle string
	Columns         int
	Items           []dynamicItemView
	ListHref        string
	AllLabel        string
}

// NewDynamicDescriptor builds a descriptor whose content is queried from
// source at render time. An empty result renders nothing; a failed query
// returns the error so the caller can record it, and still renders nothing.
func NewDynamicDescriptor(cfg DynamicList, source domain.CollectionSource) Descriptor {
	return Descriptor{
		Type:    cfg.Type,
		Label:   cfg.Label,
		Dynamic: true,
		Entity:  cfg.Entity,
		Default: func() domain.BlockData {
			return domain.BlockData{"title": cfg.DefaultTitle, "subtitle": "", "count": defaultCount}
		},
		Fields: []Field{
			textField("title", "Title"),
			textareaField("subtitle", "Subtitle"),
			selectField("count", "Items shown", "3", "4", "6"),
			textField("all_label", "Link text"),
		},
		Render: func(ctx context.Context, data domain.BlockData) (template.HTML, error) {
			p := Payload(data)
			count := BlockCount(data)

			items, err := source.QueryRecent(ctx, cfg.Entity, count)
			if err != nil {
				return "", err
			}
			if len(items) == 0 {
				return "", nil
			}
			if len(items) > count {
				items = items[:count]
			}

			v := dynamicListView{
				Entity:   cfg.Entity,
				Title:    p.Text("title", cfg.DefaultTitle),
				Subtitle: p.String("subtitle", ""),
				Columns:  gridColumns(count),
				ListHref: cfg.BasePath,
				AllLabel: p.Text("all_label", cfg.AllLabel),
			}
			for _, it := range items {
				v.Items = append(v.Items, itemView(cfg.BasePath, it))
			}
			return execute("dynamic_list", v)
		},
	}
}

// BlockCount returns the clamped number of items a dynamic block shows.
func BlockCount(data domain.BlockData) int {
	return ClampCount(Payload(data).Int("count", defaultCount))
}

func itemView(basePath string, it domain.CollectionItem) dynamicItemView {
	ref := it.Slug
	if ref == "" {
		ref = it.ID
	}
	v := dynamicItemView{
		Title:    it.Title,
		Href:     strings.TrimSuffix(basePath, "/") + "/" + url.PathEscape(ref),
		ImageURL: it.ImageURL,
		Excerpt:  Excerpt(it.Content, 100),
		Date:     FormatDate(it.PublishedAt),
	}
	if !it.PublishedAt.IsZero() {
		v.ISODate = it.PublishedAt.Format(time.DateOnly)
	}
	return v
}

func gridColumns(count int) int {
	if count == 4 {
		return 4
	}
	return 3
}
