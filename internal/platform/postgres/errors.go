package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	pgForeignKeyViolationCode = "23503"
)

// isForeignKeyViolation checks if the given error is a PostgreSQL foreign
// key constraint violation, e.g. appending an activity event for a contact
// that does not exist.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode
}
