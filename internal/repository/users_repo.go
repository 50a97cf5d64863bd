package repository

import (
	"context"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
)

// UsersRepository users table access.
type UsersRepository interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context, filter domain.UserFilter, page domain.Page) ([]*domain.User, int, error)
	CreateUser(ctx context.Context, u *domain.User) error
	// UpdateUser overwrites profile fields; PasswordHash is written only when non-empty.
	UpdateUser(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error
	// UpsertUserByEmail creates or updates the account keyed by email (seed-admin).
	UpsertUserByEmail(ctx context.Context, u *domain.User) error
}
