// Package database provides SQLite persistence for Sundial Core.
//
// It wraps database/sql with:
//   - Connection setup (WAL mode, busy timeout, foreign keys)
//   - Embedded schema migrations (see the root migrations package)
//   - Health checks for the system endpoint
//
// SQLite is configured with a single writer connection; repositories in
// other packages share the *DB and rely on the busy timeout for
// contention. Migrations are embedded into the binary so deployments
// never depend on loose SQL files.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
