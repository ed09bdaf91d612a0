// Package repository defines the data access interfaces for netseg.
//
// This package provides the repository abstraction layer for persisting
// saved designs, department zones, virtual hosts, connectivity test results
// and UI preferences. The actual implementation is in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation stores each entity as a JSON document next to
// the columns it is looked up or ordered by. It handles:
//
// - Upserts keyed by id (or name for designs)
// - Newest-first listing of test results
// - A key/value table backing prefs.Store
//
// # Schema Migration
//
// The sqlite repository creates its tables on startup if they are missing.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
