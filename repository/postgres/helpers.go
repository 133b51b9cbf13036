package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Constraint names from assets/migrations.
const (
	constraintUserEmail    = "users_email_key"
	constraintUserIdentity = "users_provider_identity_key"
)

// uniqueConstraint returns the violated constraint name, if err is a
// unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
