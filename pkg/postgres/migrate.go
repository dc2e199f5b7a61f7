package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// migrateLogger is the subset of slog the migration runner needs.
type migrateLogger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// Migrate brings the schema up to date with goose. The pgx pool is bridged
// to database/sql through stdlib, sharing the underlying connections.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, log migrateLogger) error {
	if cfg.MigrationsPath == "" {
		return errors.Join(ErrFailedToMigrate, ErrMigrationsPathNotSet)
	}
	if _, err := os.Stat(cfg.MigrationsPath); err != nil {
		if os.IsNotExist(err) {
			return errors.Join(ErrMigrationsDirNotFound, err)
		}
		return errors.Join(ErrFailedToMigrate, err)
	}

	return migrate(ctx, pool, cfg, log, nil, cfg.MigrationsPath)
}

// MigrateFS is Migrate over an embedded filesystem, so binaries can carry
// their migrations instead of reading them from disk.
func MigrateFS(ctx context.Context, pool *pgxpool.Pool, cfg Config, log migrateLogger, fsys fs.FS, dir string) error {
	return migrate(ctx, pool, cfg, log, fsys, dir)
}

func migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, log migrateLogger, fsys fs.FS, dir string) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration db handle", "error", err)
		}
	}()

	goose.SetLogger(gooseLogger{log: log})
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	if cfg.MigrationsTable != "" {
		goose.SetTableName(cfg.MigrationsTable)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToMigrate, err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return errors.Join(ErrFailedToMigrate, err)
	}
	return nil
}

// gooseLogger routes goose's printf-style output into structured logging.
type gooseLogger struct {
	log migrateLogger
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.ErrorContext(context.Background(), fmt.Sprintf(format, v...))
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.InfoContext(context.Background(), fmt.Sprintf(format, v...))
}
