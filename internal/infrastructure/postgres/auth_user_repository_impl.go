package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/users-api/internal/domain/entity"
	"github.com/oksasatya/users-api/internal/domain/repository"
)

type AuthUserRepository struct {
	pool *pgxpool.Pool
}

func NewAuthUserRepository(pool *pgxpool.Pool) *AuthUserRepository {
	return &AuthUserRepository{pool: pool}
}

func (r *AuthUserRepository) Create(ctx context.Context, u *entity.AuthUser) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO auth_users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, u.Name, u.Email, u.PasswordHash)

	return mapUniqueViolation(row.Scan(&u.ID))
}

func (r *AuthUserRepository) GetByEmail(ctx context.Context, email string) (*entity.AuthUser, error) {
	u := &entity.AuthUser{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash
		FROM auth_users
		WHERE email = $1
	`, email)

	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}

var _ repository.AuthUserRepository = (*AuthUserRepository)(nil)
