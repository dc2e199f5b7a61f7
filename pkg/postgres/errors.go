package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToConnect       = errors.New("failed to connect to postgres")
	ErrFailedToParseConfig   = errors.New("failed to parse postgres config")
	ErrHealthcheckFailed     = errors.New("postgres healthcheck failed")
	ErrFailedToMigrate       = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound = errors.New("migrations directory not found")
	ErrMigrationsPathNotSet  = errors.New("migrations path not provided")
)

// IsNotFound detects pgx.ErrNoRows so stores can translate it into their
// own not-found sentinels.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation detects unique constraint violations (SQLSTATE 23505),
// e.g. two keys landing on the same key_hash.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation detects referential integrity violations
// (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
