package repository

import (
	"context"

	"github.com/oksasatya/users-api/internal/domain/entity"
)

// AuthUserRepository defines the interface for login identities.
// Create returns ErrDuplicateEmail when the email is already registered.
type AuthUserRepository interface {
	Create(ctx context.Context, u *entity.AuthUser) error
	GetByEmail(ctx context.Context, email string) (*entity.AuthUser, error)
}

// Pinger is implemented by stores that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
