package collection

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"sitepages/internal/dbclient"
	"sitepages/internal/domain"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLSource reads items from a table in postgres, mysql or sqlite.
type SQLSource struct {
	db     *sql.DB
	driver domain.DatabaseDriver
	query  string
}

// NewSQLSource prepares the recent-items query for table. Column names
// come from fields; unset optional columns select an empty value.
func NewSQLSource(db *sql.DB, driver domain.DatabaseDriver, table, where string, fields FieldMap) (*SQLSource, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	fields = fields.WithDefaults()

	cols := []string{fields.ID, fields.Title, fields.Slug, fields.ImageURL, fields.Content, fields.PublishedAt}
	for _, c := range cols {
		if c != "-" && !identPattern.MatchString(c) {
			return nil, fmt.Errorf("invalid column name %q", c)
		}
	}
	selects := make([]string, len(cols))
	for i, c := range cols {
		if c == "-" {
			selects[i] = "''"
		} else {
			selects[i] = c
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(selects, ", "), table)
	if strings.TrimSpace(where) != "" {
		fmt.Fprintf(&b, " WHERE %s", where)
	}
	fmt.Fprintf(&b, " ORDER BY %s DESC LIMIT %s", fields.PublishedAt, dbclient.Placeholder(driver, 1))

	return &SQLSource{db: db, driver: driver, query: b.String()}, nil
}

// Query returns the SQL text used for each lookup.
func (s *SQLSource) Query() string { return s.query }

func (s *SQLSource) QueryRecent(ctx context.Context, entity string, count int) ([]domain.CollectionItem, error) {
	rows, err := s.db.QueryContext(ctx, s.query, count)
	if err != nil {
		return nil, NewSourceError(KindSQL, "query", entity, err)
	}
	defer rows.Close()

	items := []domain.CollectionItem{}
	for rows.Next() {
		var id, title, slug, image, content, published any
		if err := rows.Scan(&id, &title, &slug, &image, &content, &published); err != nil {
			return nil, NewSourceError(KindSQL, "scan", entity, err)
		}
		items = append(items, domain.CollectionItem{
			ID:          toString(id),
			Title:       toString(title),
			Slug:        toString(slug),
			ImageURL:    toString(image),
			Content:     toString(content),
			PublishedAt: toTime(published),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, NewSourceError(KindSQL, "query", entity, err)
	}
	return items, nil
}

func (s *SQLSource) Close() error {
	return s.db.Close()
}
