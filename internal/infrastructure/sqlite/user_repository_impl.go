package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/users-api/internal/domain/entity"
	"github.com/oksasatya/users-api/internal/domain/repository"
	"github.com/oksasatya/users-api/internal/infrastructure/sqlutil"
)

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

type scanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type UserRepository struct {
	db *sql.DB
}

func scanAggregate(row scanner) (*entity.User, error) {
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

func collectAggregates(rows *sql.Rows) ([]entity.User, error) {
	defer func() { _ = rows.Close() }()
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

func getAggregate(ctx context.Context, q queryer, id int64) (*entity.User, error) {
	u, err := scanAggregate(q.QueryRowContext(ctx, selectAggregate+` WHERE u.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]entity.User, error) {
	rows, err := r.db.QueryContext(ctx, selectAggregate+` ORDER BY u.id LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, err
	}
	return collectAggregates(rows)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return getAggregate(ctx, r.db, id)
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]entity.User, error) {
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, selectAggregate+` WHERE u.id IN (`+marks+`)`, args...)
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
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var taken bool
	if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`, u.Email).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return repository.ErrDuplicateEmail
	}
	if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`, u.Username).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return repository.ErrDuplicateUsername
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO users (name, username, email, phone, website)
		VALUES (?, ?, ?, ?, ?)
	`, u.Name, u.Username, u.Email, u.Phone, u.Website)
	if err != nil {
		err = mapUniqueViolation(err)
		return err
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	u.Address.UserID = u.ID
	res, err = tx.ExecContext(ctx, `
		INSERT INTO addresses (street, suite, city, zipcode, user_id)
		VALUES (?, ?, ?, ?, ?)
	`, u.Address.Street, u.Address.Suite, u.Address.City, u.Address.Zipcode, u.ID)
	if err != nil {
		err = fmt.Errorf("insert address: %w", err)
		return err
	}
	if u.Address.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	u.Address.Geo.AddressID = u.Address.ID
	res, err = tx.ExecContext(ctx, `
		INSERT INTO geo (lat, lng, address_id)
		VALUES (?, ?, ?)
	`, u.Address.Geo.Lat, u.Address.Geo.Lng, u.Address.ID)
	if err != nil {
		err = fmt.Errorf("insert geo: %w", err)
		return err
	}
	if u.Address.Geo.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	u.Company.UserID = u.ID
	res, err = tx.ExecContext(ctx, `
		INSERT INTO companies (name, catch_phrase, bs, user_id)
		VALUES (?, ?, ?, ?)
	`, u.Company.Name, u.Company.CatchPhrase, u.Company.BS, u.ID)
	if err != nil {
		err = fmt.Errorf("insert company: %w", err)
		return err
	}
	if u.Company.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

func (r *UserRepository) Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	sets, args := sqlutil.PatchAssignments(patch, func(int) string { return "?" })
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (u *entity.User, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	u, err = getAggregate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	stmts := []struct{ what, sql string }{
		{"geo", `DELETE FROM geo WHERE address_id IN (SELECT id FROM addresses WHERE user_id = ?)`},
		{"address", `DELETE FROM addresses WHERE user_id = ?`},
		{"company", `DELETE FROM companies WHERE user_id = ?`},
		{"user", `DELETE FROM users WHERE id = ?`},
	}
	for _, st := range stmts {
		if _, err = tx.ExecContext(ctx, st.sql, id); err != nil {
			err = fmt.Errorf("delete %s: %w", st.what, err)
			return nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
