// Package postgres implements the store interfaces against a PostgreSQL
// database accessed through database/sql with the pgx driver. The schema
// is managed externally; these stores only read and append, except for the
// single-statement atomic lead score increment on contacts.
package postgres
