// Package importer reconciles an imported reading library with the catalog.
//
// For each selected row the Resolver finds or creates a catalog entry and the
// Reconciler writes the user's reading status for it. The Orchestrator runs the
// two stages row by row, in input order and strictly one row at a time: the
// Resolver's find-or-create is a read followed by a write against the shared
// catalog, so rows processed concurrently could create duplicate entries for
// the same work. Failures are isolated per row; rows already written stay
// committed.
//
// Service wraps the Orchestrator with import history, metrics and the
// authentication check used by the HTTP and CLI entry points.
package importer
