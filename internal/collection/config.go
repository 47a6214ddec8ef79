package collection

import (
	"time"

	"sitepages/internal/domain"
)

// Source kinds accepted in Config.Type.
const (
	KindLocal    = "local"
	KindSQL      = "sql"
	KindMongo    = "mongo"
	KindHTTP     = "http"
	KindJSONFile = "json_file"
)

// Config binds one entity to a backing collection.
type Config struct {
	Type       string                    `yaml:"type"`
	Connection domain.DatabaseConnection `yaml:"connection"` // sql, mongo
	Table      string                    `yaml:"table"`      // sql table or mongo collection
	Where      string                    `yaml:"where"`      // extra sql predicate
	Filter     map[string]any            `yaml:"filter"`     // mongo filter document
	URL        string                    `yaml:"url"`        // http; {entity} and {count} are substituted
	Headers    map[string]string         `yaml:"headers"`
	TokenKey   string                    `yaml:"token_key"` // secret holding a bearer token
	DataPath   string                    `yaml:"data_path"` // dot path to the item array (http, json_file)
	File       string                    `yaml:"file"`
	RateLimit  float64                   `yaml:"rate_limit"` // http requests per second, 0 = unlimited
	Timeout    string                    `yaml:"timeout"`
	Fields     FieldMap                  `yaml:"fields"`
}

// GetTimeout returns the per-request timeout (default 10s).
func (c Config) GetTimeout() time.Duration {
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
			return d
		}
	}
	return 10 * time.Second
}

// FieldMap names the backing field for each item attribute.
// An empty name means the attribute is not available.
type FieldMap struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	ImageURL    string `yaml:"image_url"`
	Content     string `yaml:"content"`
	PublishedAt string `yaml:"published_at"`
}

// WithDefaults fills unset names with the conventional column names.
func (f FieldMap) WithDefaults() FieldMap {
	def := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return FieldMap{
		ID:          def(f.ID, "id"),
		Title:       def(f.Title, "title"),
		Slug:        def(f.Slug, "slug"),
		ImageURL:    def(f.ImageURL, "image_url"),
		Content:     def(f.Content, "content"),
		PublishedAt: def(f.PublishedAt, "published_at"),
	}
}
