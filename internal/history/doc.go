// Package history records completed split runs in a SQLite journal so the
// CLI can show what was extracted, when, and whether every chapter succeeded.
//
// The journal is best effort: callers log failures to record a run and carry
// on. The schema is versioned; a database written by an incompatible version
// is rejected with ErrSchemaMismatch rather than migrated.
package history
