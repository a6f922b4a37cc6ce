// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles the details of database connections, query execution, schema
// migrations and data mapping between domain entities and database records.
//
// Queries are built with squirrel using dollar placeholders and executed
// through database/sql on the pgx stdlib driver, so every store works on both
// *sql.DB and *sql.Tx via store.DBTX.
package postgres
