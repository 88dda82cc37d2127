package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose keeps its settings in package globals
var migrateMu sync.Mutex

var gooseUpContext = goose.UpContext

// Migrate applies the embedded schema for the given table prefix.
// The migrations read the prefix from TABLE_PREFIX through goose ENVSUB,
// and goose's own bookkeeping table is prefixed the same way.
func Migrate(ctx context.Context, databaseURL, prefix string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	return runMigrations(ctx, db, prefix)
}

func runMigrations(ctx context.Context, db *sql.DB, prefix string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	if err := os.Setenv("TABLE_PREFIX", prefix); err != nil {
		return fmt.Errorf("set table prefix: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(prefix + "goose_db_version")
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
