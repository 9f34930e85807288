package application

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-api/internal/domain/entity"
	repo "github.com/oksasatya/users-api/internal/domain/repository"
	"github.com/oksasatya/users-api/pkg/helpers"
)

const (
	DefaultLimit      = 100
	MaxLimit          = 100
	DefaultSearchSize = 10
	MaxSearchSize     = 50
)

// UserSearcher is the free-text index over users. It is satisfied by
// *search.UserIndex.
type UserSearcher interface {
	IndexUser(ctx context.Context, u *entity.User) error
	DeleteUser(ctx context.Context, id int64) error
	SearchIDs(ctx context.Context, q string, size int) ([]int64, error)
}

// UserService is the user aggregate writer. Redis, Index and Events are
// optional; when set they are kept in sync on a best-effort basis.
type UserService struct {
	Repo     repo.UserRepository
	Redis    *redis.Client
	CacheTTL time.Duration
	Index    UserSearcher
	Events   EventPublisher
	Logger   *logrus.Logger
}

func NewUserService(repo repo.UserRepository, rdb *redis.Client, cacheTTL time.Duration, index UserSearcher, events EventPublisher, logger *logrus.Logger) *UserService {
	return &UserService{
		Repo:     repo,
		Redis:    rdb,
		CacheTTL: cacheTTL,
		Index:    index,
		Events:   events,
		Logger:   logger,
	}
}

func cacheKey(id int64) string {
	return "user:cache:" + strconv.FormatInt(id, 10)
}

// genKey counts writes to a user. GetByID only fills the cache when no write
// happened between its generation read and the cache set.
func genKey(id int64) string {
	return "user:cache:gen:" + strconv.FormatInt(id, 10)
}

func (s *UserService) genTTL() time.Duration {
	return 2*s.CacheTTL + time.Minute
}

// List returns users in ascending id order.
func (s *UserService) List(ctx context.Context, skip, limit int) ([]entity.User, error) {
	if skip < 0 || limit < 1 || limit > MaxLimit {
		return nil, ErrInvalidPagination
	}
	return s.Repo.List(ctx, skip, limit)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var gen string
	cacheable := false
	if s.Redis != nil {
		var cached entity.User
		ok, err := helpers.RedisGetJSON(ctx, s.Redis, cacheKey(id), &cached)
		if err != nil {
			s.warn(err, id, "redis get failed")
		} else if ok {
			return &cached, nil
		}
		if gen, err = helpers.RedisGeneration(ctx, s.Redis, genKey(id)); err != nil {
			s.warn(err, id, "redis generation read failed")
		} else {
			cacheable = true
		}
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if cacheable {
		if _, err := helpers.RedisSetJSONIfGeneration(ctx, s.Redis, cacheKey(id), u, s.CacheTTL, genKey(id), gen); err != nil {
			s.warn(err, id, "redis set failed")
		}
	}
	return u, nil
}

// Create persists the user with its address, geo and company in one
// transaction. The ids of all four rows are filled in on u.
func (s *UserService) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, mapRepoError(err)
	}
	s.reindex(ctx, u)
	publish(ctx, s.Events, s.Logger, EventUserCreated, userEvent(u))
	return u, nil
}

// Update applies the set fields of patch to the user row only.
func (s *UserService) Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error) {
	u, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.invalidate(ctx, id)
	s.reindex(ctx, u)
	publish(ctx, s.Events, s.Logger, EventUserUpdated, userEvent(u))
	return u, nil
}

// Delete removes the aggregate and returns its last known state.
func (s *UserService) Delete(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.invalidate(ctx, id)
	if s.Index != nil {
		if err := s.Index.DeleteUser(ctx, id); err != nil {
			s.warn(err, id, "es delete failed")
		}
	}
	publish(ctx, s.Events, s.Logger, EventUserDeleted, userEvent(u))
	return u, nil
}

// Search looks ids up in the index and loads the users from the store.
// Without an index it returns an empty list.
func (s *UserService) Search(ctx context.Context, q string, size int) ([]entity.User, error) {
	if s.Index == nil || q == "" {
		return []entity.User{}, nil
	}
	if size <= 0 || size > MaxSearchSize {
		size = DefaultSearchSize
	}
	ids, err := s.Index.SearchIDs(ctx, q, size)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	return s.Repo.GetByIDs(ctx, ids)
}

// Count is used by the seeder to decide whether to run.
func (s *UserService) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}

func (s *UserService) reindex(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexUser(ctx, u); err != nil {
		s.warn(err, u.ID, "es index failed")
	}
}

func (s *UserService) invalidate(ctx context.Context, id int64) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisInvalidate(ctx, s.Redis, cacheKey(id), genKey(id), s.genTTL()); err != nil {
		s.warn(err, id, "redis invalidate failed")
	}
}

func (s *UserService) warn(err error, id int64, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn(msg)
	}
}

func userEvent(u *entity.User) UserEvent {
	return UserEvent{ID: u.ID, Name: u.Name, Username: u.Username, Email: u.Email}
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repo.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, repo.ErrDuplicateUsername):
		return ErrUsernameTaken
	}
	return err
}
