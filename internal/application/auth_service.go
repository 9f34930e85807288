package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-api/internal/domain/entity"
	repo "github.com/oksasatya/users-api/internal/domain/repository"
	"github.com/oksasatya/users-api/pkg/helpers"
)

const TokenTypeBearer = "bearer"

// Token is an issued access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Identity is the authenticated principal carried by a valid token.
type Identity struct {
	Email string
}

type AuthService struct {
	Repo   repo.AuthUserRepository
	JWT    *helpers.JWTManager
	Events EventPublisher
	Logger *logrus.Logger
}

func NewAuthService(repo repo.AuthUserRepository, jwt *helpers.JWTManager, events EventPublisher, logger *logrus.Logger) *AuthService {
	return &AuthService{Repo: repo, JWT: jwt, Events: events, Logger: logger}
}

// Register stores a new login identity and returns a token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (Token, error) {
	if err := s.create(ctx, name, email, password); err != nil {
		return Token{}, err
	}
	tok, err := s.issue(email)
	if err != nil {
		return Token{}, err
	}
	publish(ctx, s.Events, s.Logger, EventAuthRegistered, RegisteredEvent{Name: name, Email: email})
	return tok, nil
}

// EnsureUser creates the identity unless the email is already registered.
// It reports whether a row was created.
func (s *AuthService) EnsureUser(ctx context.Context, name, email, password string) (bool, error) {
	err := s.create(ctx, name, email, password)
	if errors.Is(err, ErrEmailTaken) {
		return false, nil
	}
	return err == nil, err
}

func (s *AuthService) create(ctx context.Context, name, email, password string) error {
	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return err
	}
	u := &entity.AuthUser{Name: name, Email: email, PasswordHash: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// Login verifies credentials. Unknown email and wrong password yield the
// same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (Token, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return Token{}, ErrInvalidCredentials
	}
	return s.issue(u.Email)
}

// Authenticate validates a bearer token without touching the store.
func (s *AuthService) Authenticate(token string) (Identity, error) {
	claims, err := s.JWT.ParseAccessToken(token)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	return Identity{Email: claims.Subject}, nil
}

func (s *AuthService) issue(email string) (Token, error) {
	access, exp, err := s.JWT.GenerateAccessToken(email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", email).Error("generate access token failed")
		}
		return Token{}, err
	}
	return Token{AccessToken: access, TokenType: TokenTypeBearer, ExpiresAt: exp}, nil
}
