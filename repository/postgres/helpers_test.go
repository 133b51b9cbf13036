package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/taskboard/domain"
)

func TestMapUserConstraint(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"email", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraintUserEmail}, domain.ErrEmailTaken},
		{"identity", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraintUserIdentity}, domain.ErrIdentityConflict},
		{"wrapped email", fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraintUserEmail}), domain.ErrEmailTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mapUserConstraint(tc.err); !errors.Is(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}

	other := &pgconn.PgError{Code: "23503", ConstraintName: "tasks_user_id_fkey"}
	if got := mapUserConstraint(other); got != error(other) {
		t.Fatalf("non-unique errors must pass through, got %v", got)
	}

	unknown := mapUserConstraint(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_pkey"})
	if !domain.IsDomainError(unknown, domain.ErrCodeConflict) {
		t.Fatalf("unknown unique constraint should be a conflict, got %v", unknown)
	}
}
