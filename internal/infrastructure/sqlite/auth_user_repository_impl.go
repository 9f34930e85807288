package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/oksasatya/users-api/internal/domain/entity"
	"github.com/oksasatya/users-api/internal/domain/repository"
)

type AuthUserRepository struct {
	db *sql.DB
}

func (r *AuthUserRepository) Create(ctx context.Context, u *entity.AuthUser) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_users (name, email, password_hash)
		VALUES (?, ?, ?)
	`, u.Name, u.Email, u.PasswordHash)
	if err != nil {
		return mapUniqueViolation(err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r *AuthUserRepository) GetByEmail(ctx context.Context, email string) (*entity.AuthUser, error) {
	u := &entity.AuthUser{}
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash
		FROM auth_users
		WHERE email = ?
	`, email)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

var _ repository.AuthUserRepository = (*AuthUserRepository)(nil)
