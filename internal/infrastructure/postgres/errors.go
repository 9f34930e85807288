package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/users-api/internal/domain/repository"
)

const uniqueViolation = "23505"

// mapUniqueViolation translates unique constraint failures into domain errors.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_email_unique", "auth_users_email_unique":
		return repository.ErrDuplicateEmail
	case "users_username_unique":
		return repository.ErrDuplicateUsername
	}
	return err
}
