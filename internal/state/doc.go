// Package state persists the small amount of data that survives between wake
// cycles: the resolved focus project and section identifiers, and a bounded
// history of cycle reports shown by `todoink status`.
//
// The store is a single SQLite database in the configured state directory.
// The schema is embedded and versioned; a version mismatch is reported rather
// than migrated, since the data can always be rebuilt by resolving again.
package state
