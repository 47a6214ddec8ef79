package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sitepages/internal/domain"
)

// OpenSQL opens a pooled connection to a SQL database backing a collection.
// The password must be provided separately (from SecretStore).
func OpenSQL(ctx context.Context, conn domain.DatabaseConnection, password string) (*sql.DB, error) {
	var driverName, dsn string
	switch conn.Driver {
	case domain.DatabaseDriverSQLite:
		driverName, dsn = "sqlite", buildSQLiteDSN(conn)
	case domain.DatabaseDriverMySQL:
		driverName, dsn = "mysql", buildMySQLDSN(conn, password)
	case domain.DatabaseDriverPostgres:
		driverName, dsn = "postgres", buildPostgresDSN(conn, password)
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", conn.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	// Collections are read a few rows at a time; keep the pool small.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}
	return db, nil
}

// Placeholder returns the n-th (1-based) bind parameter for driver.
func Placeholder(driver domain.DatabaseDriver, n int) string {
	if driver == domain.DatabaseDriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
