// Package postgres provides PostgreSQL implementations of the store
// interfaces, built on database/sql over the pgx stdlib driver. Each store
// accepts a store.DBTX so it can run against either a connection pool or a
// transaction.
package postgres
