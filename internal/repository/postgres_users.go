package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

var userColumns = []string{"id", "email", "name", "phone", "role", "is_active", "password_hash", "created_at", "updated_at"}

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role, &u.IsActive, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUsersRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError("get user", err)
	}
	return u, nil
}

func (r *PostgresUsersRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").
		Where(sq.Eq{"email": strings.ToLower(strings.TrimSpace(email))}).ToSql()
	if err != nil {
		return nil, err
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError("get user by email", err)
	}
	return u, nil
}

func (r *PostgresUsersRepository) ListUsers(ctx context.Context, filter domain.UserFilter, page domain.Page) ([]*domain.User, int, error) {
	b := psql.Select(userColumns...).From("users")
	if filter.Search != "" {
		b = b.Where(ilike(filter.Search, "name", "email"))
	}
	if filter.Role != "" {
		b = b.Where(sq.Eq{"role": filter.Role})
	}
	if filter.Active != nil {
		b = b.Where(sq.Eq{"is_active": *filter.Active})
	}

	total, err := count(ctx, r.db, b)
	if err != nil {
		return nil, 0, mapError("count users", err)
	}

	query, args, err := b.OrderBy("name", "email").Limit(page.Limit()).Offset(page.Offset()).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list users", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, mapError("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("iterate users", err)
	}
	return users, total, nil
}

func (r *PostgresUsersRepository) CreateUser(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	query, args, err := psql.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Email, u.Name, u.Phone, u.Role, u.IsActive, u.PasswordHash, u.CreatedAt, u.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return mapError("create user", err)
	}
	return nil
}

func (r *PostgresUsersRepository) UpdateUser(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	b := psql.Update("users").
		Set("email", u.Email).
		Set("name", u.Name).
		Set("phone", u.Phone).
		Set("role", u.Role).
		Set("is_active", u.IsActive).
		Set("updated_at", u.UpdatedAt).
		Where(sq.Eq{"id": u.ID})
	if u.PasswordHash != "" {
		b = b.Set("password_hash", u.PasswordHash)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update user", err)
	}
	return affected("update user", res)
}

func (r *PostgresUsersRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query, args, err := psql.Update("users").
		Set("password_hash", passwordHash).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update password", err)
	}
	return affected("update password", res)
}

func (r *PostgresUsersRepository) DeleteUser(ctx context.Context, id string) error {
	query, args, err := psql.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("delete user", err)
	}
	return affected("delete user", res)
}

func (r *PostgresUsersRepository) UpsertUserByEmail(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, name, phone, role, is_active, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		 ON CONFLICT (email)
		 DO UPDATE SET name = EXCLUDED.name,
		               role = EXCLUDED.role,
		               is_active = EXCLUDED.is_active,
		               password_hash = EXCLUDED.password_hash,
		               updated_at = EXCLUDED.updated_at
		 RETURNING id, created_at, updated_at`,
		u.ID, u.Email, u.Name, u.Phone, u.Role, u.IsActive, u.PasswordHash, now,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapError("upsert user", err)
}
