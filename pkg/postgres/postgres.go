package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationLockKey is the session advisory lock held while migrating.
// `scheduler migrate` and `scheduler serve --migrate` may run against the same database at once.
const migrationLockKey int64 = 0x5343_4845_4455_4c45

// DB stores availability, requirements and committed schedules in PostgreSQL
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB connects to PostgreSQL and checks the connection
func NewDB(ctx context.Context, connString string, logger *zap.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Debug("Connected to PostgreSQL",
		zap.String("host", poolConfig.ConnConfig.Host),
		zap.String("database", poolConfig.ConnConfig.Database))

	return &DB{pool: pool, logger: logger}, nil
}

func (d *DB) Close() error {
	d.pool.Close()
	return nil
}

// RunMigrations applies the embedded SQL files that schema_migrations has no record of, in name order.
// Each file runs in its own transaction. Concurrent callers wait on an advisory lock.
func (d *DB) RunMigrations(ctx context.Context) error {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("failed to take migration lock: %w", err)
	}
	defer func() {
		// Runs even when ctx is already cancelled
		if _, unlockErr := conn.Exec(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, migrationLockKey); unlockErr != nil {
			d.logger.Warn("Failed to release migration lock, dropping connection", zap.Error(unlockErr))
			// Closing the session releases its locks
			conn.Conn().Close(context.WithoutCancel(ctx))
		}
	}()

	_, err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	applied, err := appliedMigrations(ctx, conn.Conn())
	if err != nil {
		return err
	}

	files, err := migrationFiles()
	if err != nil {
		return err
	}

	count := 0
	for _, filename := range files {
		if applied[filename] {
			d.logger.Debug("Migration already applied", zap.String("migration", filename))
			continue
		}

		started := time.Now()
		if err := applyMigration(ctx, conn.Conn(), filename); err != nil {
			return err
		}
		count++
		d.logger.Info("Applied migration",
			zap.String("migration", filename),
			zap.Duration("duration", time.Since(started)))
	}

	d.logger.Info("Database schema up to date",
		zap.Int("applied", count),
		zap.Int("total", len(files)))
	return nil
}

func appliedMigrations(ctx context.Context, conn *pgx.Conn) (map[string]bool, error) {
	rows, err := conn.Query(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	filenames, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}

	applied := make(map[string]bool, len(filenames))
	for _, f := range filenames {
		applied[f] = true
	}
	return applied, nil
}

// migrationFiles lists the embedded .sql files sorted by name
func migrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	slices.Sort(files)
	return files, nil
}

func applyMigration(ctx context.Context, conn *pgx.Conn, filename string) error {
	content, err := fs.ReadFile(migrationsFS, "migrations/"+filename)
	if err != nil {
		return fmt.Errorf("failed to read migration %s: %w", filename, err)
	}

	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, filename); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", filename, err)
		}
		return nil
	})
}
