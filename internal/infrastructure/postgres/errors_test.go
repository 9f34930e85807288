package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/users-api/internal/domain/repository"
)

func TestMapUniqueViolation(t *testing.T) {
	fkErr := &pgconn.PgError{Code: "23503", ConstraintName: "addresses_user_id_fkey"}
	otherUnique := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "companies_user_unique"}
	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"users email", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_unique"}, repository.ErrDuplicateEmail},
		{"auth users email", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "auth_users_email_unique"}, repository.ErrDuplicateEmail},
		{"username", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_username_unique"}, repository.ErrDuplicateUsername},
		{"wrapped username", fmt.Errorf("insert user: %w", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_username_unique"}), repository.ErrDuplicateUsername},
		{"other unique constraint", otherUnique, otherUnique},
		{"other sqlstate", fkErr, fkErr},
		{"non-postgres error", plain, plain},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapUniqueViolation(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
