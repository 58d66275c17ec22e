// Package store persists machine specs and their bootstrap bookkeeping in
// a local SQLite database.
//
// The orchestration framework normally owns machine persistence; the CLI
// uses this store in its place so that allocate and destroy can run as
// separate invocations. Schema changes are applied with embedded
// golang-migrate migrations when the store is opened.
package store
