package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"

	"go.uber.org/zap"
)

// UserService user administration.
type UserService struct {
	users  repository.UsersRepository
	logger *zap.Logger
}

func NewUserService(users repository.UsersRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

type ListUsersRequest struct {
	Search string
	Role   string
	Active *bool
	Page   int
	Size   int
}

func (s *UserService) ListUsers(ctx context.Context, req ListUsersRequest) (*domain.PageResult[*domain.User], error) {
	role := domain.Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	if role != "" && !role.Valid() {
		return nil, domain.NewValidationError("role", "unknown role")
	}
	page := domain.NewPage(req.Page, req.Size)
	users, total, err := s.users.ListUsers(ctx, domain.UserFilter{Search: req.Search, Role: role, Active: req.Active}, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	res := domain.NewPageResult(users, total, page)
	return &res, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

type CreateUserRequest struct {
	Email    string `json:"email" valid:"required,email"`
	Name     string `json:"name" valid:"required,stringlength(1|200)"`
	Phone    string `json:"phone"`
	Role     string `json:"role" valid:"required,in(ADMIN|MANAGER|EMPLOYEE|USER)"`
	Password string `json:"password" valid:"required"`
	IsActive *bool  `json:"is_active" valid:"-"`
}

func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if err := validate(&req); err != nil {
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:        req.Email,
		Name:         req.Name,
		Phone:        optional(req.Phone),
		Role:         domain.Role(req.Role),
		IsActive:     boolOr(req.IsActive, true),
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("User created", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

type UpdateUserRequest struct {
	ID       string `json:"-"`
	Email    string `json:"email" valid:"required,email"`
	Name     string `json:"name" valid:"required,stringlength(1|200)"`
	Phone    string `json:"phone"`
	Role     string `json:"role" valid:"required,in(ADMIN|MANAGER|EMPLOYEE|USER)"`
	Password string `json:"password"` // optional; empty keeps the current one
	IsActive *bool  `json:"is_active" valid:"-"`
}

func (s *UserService) UpdateUser(ctx context.Context, req UpdateUserRequest) (*domain.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if err := validate(&req); err != nil {
		return nil, err
	}
	u, err := s.users.GetUser(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.Email = req.Email
	u.Name = req.Name
	u.Phone = optional(req.Phone)
	u.Role = domain.Role(req.Role)
	u.IsActive = boolOr(req.IsActive, u.IsActive)
	u.PasswordHash = ""
	if req.Password != "" {
		if u.PasswordHash, err = HashPassword(req.Password); err != nil {
			return nil, err
		}
	}
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

type DeleteUserRequest struct {
	ID      string
	ActorID string
}

// DeleteUser removes a user. Users cannot delete their own account.
func (s *UserService) DeleteUser(ctx context.Context, req DeleteUserRequest) error {
	if req.ID == req.ActorID {
		return fmt.Errorf("cannot delete your own account: %w", domain.ErrConflict)
	}
	if err := s.users.DeleteUser(ctx, req.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("User deleted", zap.String("user_id", req.ID), zap.String("actor_id", req.ActorID))
	return nil
}

type SeedAdminRequest struct {
	Email    string `valid:"required,email"`
	Name     string `valid:"required"`
	Password string `valid:"required"`
}

// SeedAdmin creates the ADMIN account or resets its role, name and password.
func (s *UserService) SeedAdmin(ctx context.Context, req SeedAdminRequest) (*domain.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(&req); err != nil {
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		Role:         domain.RoleAdmin,
		IsActive:     true,
		PasswordHash: hash,
	}
	if err := s.users.UpsertUserByEmail(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to seed admin: %w", err)
	}
	s.logger.Info("Admin account seeded", zap.String("user_id", u.ID), zap.String("email", u.Email))
	return u, nil
}
