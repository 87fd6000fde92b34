package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"expenseflow/pkg/config"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// so repository methods can run inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps a sql.DB together with the dialect-aware statement builder.
type DB struct {
	*sql.DB
	Builder squirrel.StatementBuilderType
	dialect Dialect
	logger  *zap.Logger
}

func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	driver, dsn, dialect := resolveDSN(cfg.DSN)

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	builder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	if dialect == DialectPostgres {
		builder = builder.PlaceholderFormat(squirrel.Dollar)
	} else {
		// Single writer for the embedded store; also keeps :memory:
		// databases on one connection.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		DB:      conn,
		Builder: builder,
		dialect: dialect,
		logger:  logger,
	}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database ready",
		zap.String("dialect", string(dialect)),
	)

	return db, nil
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

// resolveDSN maps the configured connection string to a registered driver.
// Postgres URLs and keyword DSNs go to pgx, everything else is treated as a
// sqlite file path. A sqlite:// prefix is accepted for compatibility.
func resolveDSN(dsn string) (driver, cleaned string, dialect Dialect) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"),
		strings.HasPrefix(dsn, "postgresql://"),
		strings.Contains(dsn, "host="):
		return "pgx", dsn, DialectPostgres
	case strings.HasPrefix(dsn, "sqlite:///"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite:///"), DialectSQLite
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://"), DialectSQLite
	default:
		return "sqlite", dsn, DialectSQLite
	}
}

// WithinTx runs fn inside a transaction. The transaction is committed when
// fn returns nil and rolled back otherwise; rollback after commit is a no-op.
func (db *DB) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// InsertWithID executes an insert and returns the generated row id,
// papering over the LastInsertId gap in the pgx driver.
func (db *DB) InsertWithID(ctx context.Context, q Querier, b squirrel.InsertBuilder) (int64, error) {
	if db.dialect == DialectPostgres {
		sqlStr, args, err := b.Suffix("RETURNING id").ToSql()
		if err != nil {
			return 0, err
		}
		var id int64
		if err := q.QueryRowContext(ctx, sqlStr, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *DB) migrate(ctx context.Context) error {
	var statements []string
	if db.dialect == DialectPostgres {
		statements = postgresSchema
	} else {
		statements = sqliteSchema
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		amount REAL NOT NULL,
		date TIMESTAMP NOT NULL,
		category TEXT,
		client_notes TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		expense_id INTEGER NOT NULL REFERENCES expenses(id),
		filename TEXT NOT NULL,
		file_path TEXT NOT NULL,
		content_type TEXT,
		file_size INTEGER,
		uploaded_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ai_suggestions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		expense_id INTEGER NOT NULL REFERENCES expenses(id),
		suggested_category TEXT,
		suggested_notes TEXT,
		was_accepted BOOLEAN NOT NULL DEFAULT 0,
		user_modified BOOLEAN NOT NULL DEFAULT 0,
		final_category TEXT,
		final_notes TEXT,
		created_at TIMESTAMP NOT NULL,
		model_used TEXT NOT NULL DEFAULT 'gpt-4'
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS expenses (
		id BIGSERIAL PRIMARY KEY,
		description TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		category TEXT,
		client_notes TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id BIGSERIAL PRIMARY KEY,
		expense_id BIGINT NOT NULL REFERENCES expenses(id),
		filename TEXT NOT NULL,
		file_path TEXT NOT NULL,
		content_type TEXT,
		file_size BIGINT,
		uploaded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ai_suggestions (
		id BIGSERIAL PRIMARY KEY,
		expense_id BIGINT NOT NULL REFERENCES expenses(id),
		suggested_category TEXT,
		suggested_notes TEXT,
		was_accepted BOOLEAN NOT NULL DEFAULT FALSE,
		user_modified BOOLEAN NOT NULL DEFAULT FALSE,
		final_category TEXT,
		final_notes TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		model_used TEXT NOT NULL DEFAULT 'gpt-4'
	)`,
}
