package dbclient

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"sitepages/internal/domain"
)

// buildPostgresDSN constructs a Postgres connection string.
func buildPostgresDSN(conn domain.DatabaseConnection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 5432
	}
	sslMode := conn.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		conn.Host, port, conn.Username, password, conn.Database, sslMode,
	)
}

// buildMySQLDSN constructs a MySQL DSN: user:password@tcp(host:port)/dbname?params.
func buildMySQLDSN(conn domain.DatabaseConnection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		conn.Username, password, conn.Host, port, conn.Database,
	)
	if conn.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}

// buildSQLiteDSN opens an external SQLite file read-mostly in WAL mode.
func buildSQLiteDSN(conn domain.DatabaseConnection) string {
	return conn.Host + "?_journal_mode=WAL&_busy_timeout=5000"
}

// buildMongoURI returns the connection URI and database name. Host may
// already be a full mongodb:// or mongodb+srv:// URI (Atlas style), in
// which case <password> placeholders are filled in.
func buildMongoURI(conn domain.DatabaseConnection, password string) (string, string) {
	if strings.HasPrefix(conn.Host, "mongodb+srv://") || strings.HasPrefix(conn.Host, "mongodb://") {
		uri := conn.Host
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", password)
			uri = strings.ReplaceAll(uri, "<db_password>", password)
		}
		dbName := conn.Database
		if dbName == "" {
			dbName = databaseFromURI(uri)
		}
		return uri, dbName
	}

	port := conn.Port
	if port == 0 {
		port = 27017
	}
	var uri string
	if conn.Username != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%d",
			url.QueryEscape(conn.Username), url.QueryEscape(password), conn.Host, port)
	} else {
		uri = fmt.Sprintf("mongodb://%s:%d", conn.Host, port)
	}

	if len(conn.Options) > 0 {
		keys := make([]string, 0, len(conn.Options))
		for k := range conn.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		params := make([]string, 0, len(keys))
		for _, k := range keys {
			params = append(params, k+"="+url.QueryEscape(conn.Options[k]))
		}
		uri += "/?" + strings.Join(params, "&")
	}

	dbName := conn.Database
	if dbName == "" {
		dbName = "test"
	}
	return uri, dbName
}

// databaseFromURI extracts the path segment of user:pass@host/DB?params.
func databaseFromURI(uri string) string {
	rest := uri
	for _, prefix := range []string{"mongodb+srv://", "mongodb://"} {
		rest = strings.TrimPrefix(rest, prefix)
	}
	if at := strings.LastIndex(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	slash := strings.Index(rest, "/")
	if slash == -1 {
		return "test"
	}
	path := rest[slash+1:]
	if q := strings.Index(path, "?"); q != -1 {
		path = path[:q]
	}
	if path == "" {
		return "test"
	}
	return path
}
