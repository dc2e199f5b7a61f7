// Package postgres bootstraps the PostgreSQL layer the credential stores
// run on: a pgx/v5 connection pool with retrying startup, goose schema
// migrations, and a health probe.
//
// The pieces are independent so they can be wired into any lifecycle
// framework:
//
//	var cfg postgres.Config
//	if err := env.Parse(&cfg); err != nil {
//	    panic(err)
//	}
//
//	pool, err := postgres.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer pool.Close()
//
//	if err := postgres.MigrateFS(ctx, pool, cfg, slog.Default(), migrations.FS, "."); err != nil {
//	    panic(err)
//	}
//
// The error helpers (IsNotFound, IsUniqueViolation, IsForeignKeyViolation)
// classify driver errors so store code never inspects SQLSTATE codes
// directly.
package postgres
