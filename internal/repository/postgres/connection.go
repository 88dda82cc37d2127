package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexdesk/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Clients   string
	Templates string
	Documents string
	Activity  string
	Queries   string
	Alerts    string
	Profile   string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Clients:   fmt.Sprintf("%sclients", prefix),
		Templates: fmt.Sprintf("%stemplates", prefix),
		Documents: fmt.Sprintf("%sdocuments", prefix),
		Activity:  fmt.Sprintf("%sactivity_posts", prefix),
		Queries:   fmt.Sprintf("%slegal_queries", prefix),
		Alerts:    fmt.Sprintf("%sclient_alerts", prefix),
		Profile:   fmt.Sprintf("%slawyer_profile", prefix),
	}
}

// CreateConnectionPool creates a pgx pool.
//
// Port 6543 is the Supabase transaction pooler (PgBouncer), which rejects prepared
// statements. Unless the connection string already picks a default_query_exec_mode,
// the pool switches to QueryExecModeCacheDescribe there: extended protocol without
// server-side prepared statements, so JSONB parameters still encode.
//
// Table names are interpolated with fmt.Sprintf before statements reach the server,
// so each prefix gets its own cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or the pool when there is none.
// Repositories call it for every statement so they join an ExecTx transaction automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}

// NewStore wires every postgres repository onto one pool.
func NewStore(cfg *RepositoryConfig) *repositories.Store {
	return &repositories.Store{
		Clients:   NewClientRepository(cfg),
		Templates: NewTemplateRepository(cfg),
		Documents: NewDocumentRepository(cfg),
		Activity:  NewActivityRepository(cfg),
		Queries:   NewQueryRepository(cfg),
		Alerts:    NewAlertRepository(cfg),
		Profile:   NewProfileRepository(cfg),
		Tx:        NewTransactionManager(cfg.Pool, cfg.Logger),
	}
}
