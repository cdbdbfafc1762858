// Package history persists one row per finalized report in a SQLite
// database under the state directory.
//
// The schema is versioned with a single schema_version row. A mismatch is
// reported as ErrSchemaMismatch; the history is disposable, so the fix is to
// delete the database file.
package history
