// Package postgres provides PostgreSQL implementations of the store
// interfaces declared in internal/store. It owns the schema migrations
// (embedded and applied with goose), maps pgconn errors to store errors,
// and converts between domain entities and table rows.
//
// Queries go through store.DBTX so every store works against either a
// *sql.DB or a *sql.Tx.
package postgres
