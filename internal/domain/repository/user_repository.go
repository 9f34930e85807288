package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/users-api/internal/domain/entity"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateUsername = errors.New("duplicate username")
)

// UserRepository persists the User aggregate.
//
// Create and Delete are atomic over users, addresses, geo and companies.
// Create checks email then username inside its transaction and also maps
// store-level unique violations, so concurrent creates cannot both succeed.
type UserRepository interface {
	List(ctx context.Context, skip, limit int) ([]entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]entity.User, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error)
	Delete(ctx context.Context, id int64) (*entity.User, error)
}
