// Package postgres provides the PostgreSQL implementation of the storage
// interfaces defined in internal/store, together with the embedded schema
// migrations and the helpers that open and migrate a database.
package postgres
