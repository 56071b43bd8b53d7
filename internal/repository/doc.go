// Package repository defines the data access interfaces for lanmap.
//
// The engine is stateless per reconciliation pass; the only persisted state
// is the last successfully built topology graph (the degradation
// controller's cache, hydrated on startup) and a bounded history of pass
// outcomes for the dashboard. The actual implementation is in the sqlite
// subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation uses WAL mode for concurrency and migrates its
// schema on open. Graphs are stored as JSON blobs alongside their tier,
// pass ID, and generation time so a restored cache keeps its true origin.
package repository
