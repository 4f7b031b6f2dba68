// Package database provides SQLite storage for GenVis Core.
//
// SQLite holds the feature history: every polled sample and every
// confirmed write is recorded so the API can serve time-range queries
// without a round trip to the camera. The database is opened in WAL
// mode with a single writer connection, which keeps the history
// writer from contending with API readers.
//
// Schema changes ship as embedded migrations (see the migrations
// package). Each migration runs in its own transaction and is recorded
// in schema_migrations, so a partially applied migration never leaves
// the schema in an unknown state. Migrations are additive: new columns
// are nullable or carry defaults, and nothing is dropped or renamed.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(); err != nil {
//	    log.Fatal(err)
//	}
//
// All queries use parameterised statements.
package database
