package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/users-api/internal/domain/entity"
	"github.com/oksasatya/users-api/internal/domain/repository"
	"github.com/oksasatya/users-api/internal/infrastructure/sqlutil"
)

// selectAggregate reads a user with its address, geo and company through
// explicit foreign-key joins.
const selectAggregate = `
	SELECT u.id, u.name, u.username, u.email, u.phone, u.website,
	       COALESCE(a.id, 0), COALESCE(a.street, ''), COALESCE(a.suite, ''), COALESCE(a.city, ''), COALESCE(a.zipcode, ''),
	       COALESCE(g.id, 0), COALESCE(g.lat, ''), COALESCE(g.lng, ''),
	       COALESCE(c.id, 0), COALESCE(c.name, ''), COALESCE(c.catch_phrase, ''), COALESCE(c.bs, '')
	FROM users u
	LEFT JOIN addresses a ON a.user_id = u.id
	LEFT JOIN geo g ON g.address_id = a.id
	LEFT JOIN companies c ON c.user_id = u.id
`

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanAggregate(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &u.Website,
		&u.Address.ID, &u.Address.Street, &u.Address.Suite, &u.Address.City, &u.Address.Zipcode,
		&u.Address.Geo.ID, &u.Address.Geo.Lat, &u.Address.Geo.Lng,
		&u.Company.ID, &u.Company.Name, &u.Company.CatchPhrase, &u.Company.BS,
	); err != nil {
		return nil, err
	}
	u.Address.UserID = u.ID
	u.Address.Geo.AddressID = u.Address.ID
	u.Company.UserID = u.ID
	return u, nil
}

func collectAggregates(rows pgx.Rows) ([]entity.User, error) {
	defer rows.Close()
	users := make([]entity.User, 0)
	for rows.Next() {
		u, err := scanAggregate(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func getAggregate(ctx context.Context, q querier, id int64, lock bool) (*entity.User, error) {
	sql := selectAggregate + ` WHERE u.id = $1`
	if lock {
		sql += ` FOR UPDATE OF u`
	}
	u, err := scanAggregate(q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, selectAggregate+` ORDER BY u.id LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		return nil, err
	}
	return collectAggregates(rows)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return getAggregate(ctx, r.pool, id, false)
}

// GetByIDs returns the users that exist among ids, in the order given.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]entity.User, error) {
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	rows, err := r.pool.Query(ctx, selectAggregate+` WHERE u.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	found, err := collectAggregates(rows)
	if err != nil {
		return nil, err
	}
	return sqlutil.OrderByIDs(found, ids), nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var taken bool
	if err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, u.Email).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return repository.ErrDuplicateEmail
	}
	if err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, u.Username).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return repository.ErrDuplicateUsername
	}

	if err = tx.QueryRow(ctx, `
		INSERT INTO users (name, username, email, phone, website)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, u.Name, u.Username, u.Email, u.Phone, u.Website).Scan(&u.ID); err != nil {
		err = mapUniqueViolation(err)
		return err
	}

	u.Address.UserID = u.ID
	if err = tx.QueryRow(ctx, `
		INSERT INTO addresses (street, suite, city, zipcode, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, u.Address.Street, u.Address.Suite, u.Address.City, u.Address.Zipcode, u.ID).Scan(&u.Address.ID); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}

	u.Address.Geo.AddressID = u.Address.ID
	if err = tx.QueryRow(ctx, `
		INSERT INTO geo (lat, lng, address_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, u.Address.Geo.Lat, u.Address.Geo.Lng, u.Address.ID).Scan(&u.Address.Geo.ID); err != nil {
		return fmt.Errorf("insert geo: %w", err)
	}

	u.Company.UserID = u.ID
	if err = tx.QueryRow(ctx, `
		INSERT INTO companies (name, catch_phrase, bs, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Company.Name, u.Company.CatchPhrase, u.Company.BS, u.ID).Scan(&u.Company.ID); err != nil {
		return fmt.Errorf("insert company: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		err = mapUniqueViolation(err)
		return err
	}
	return nil
}

// Update applies the set fields of patch to the user row only.
// Unique violations surface as ErrDuplicateEmail / ErrDuplicateUsername.
func (r *UserRepository) Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	sets, args := sqlutil.PatchAssignments(patch, func(n int) string { return fmt.Sprintf("$%d", n) })
	args = append(args, id)
	sql := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	if res.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the user and its dependents in one transaction and returns
// the representation read just before removal.
func (r *UserRepository) Delete(ctx context.Context, id int64) (u *entity.User, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	u, err = getAggregate(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM geo WHERE address_id IN (SELECT id FROM addresses WHERE user_id = $1)`, id); err != nil {
		return nil, fmt.Errorf("delete geo: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM addresses WHERE user_id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete address: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM companies WHERE user_id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete company: %w", err)
	}
	res, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	if res.RowsAffected() == 0 {
		err = repository.ErrNotFound
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

// Ping checks the pool connectivity.
func (r *UserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

var _ repository.UserRepository = (*UserRepository)(nil)
