package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/config"
	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt input limit
)

// Claims JWT payload issued on login.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies access tokens.
type AuthService struct {
	users  repository.UsersRepository
	secret []byte
	ttl    time.Duration
	issuer string
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthService(users repository.UsersRepository, cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{
		users:  users,
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		logger: logger,
		now:    time.Now,
	}
}

// HashPassword bcrypt-hashes a plain password.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return "", domain.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

type LoginRequest struct {
	Email     string `json:"email" valid:"required,email"`
	Password  string `json:"password" valid:"required"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// Login checks the credentials and returns a signed HS256 token.
// Unknown email, wrong password and inactive account all return ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(&req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("User login failed: unknown email",
				zap.String("email", req.Email),
				zap.String("ip_address", req.IPAddress),
				zap.String("user_agent", req.UserAgent),
			)
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("User login failed: wrong password",
			zap.String("user_id", user.ID),
			zap.String("ip_address", req.IPAddress),
		)
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !user.IsActive {
		s.logger.Warn("User login failed: account disabled", zap.String("user_id", user.ID))
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}

	token, exp, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &LoginResponse{Token: token, ExpiresAt: exp, User: user}, nil
}

// IssueToken signs a token for user valid for the configured TTL.
func (s *AuthService) IssueToken(user *domain.User) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseToken verifies signature, algorithm and expiry.
func (s *AuthService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v: %w", err, domain.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("invalid token: missing subject: %w", domain.ErrUnauthorized)
	}
	return claims, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user no longer exists: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	return user, nil
}

type ChangePasswordRequest struct {
	UserID      string `json:"-"`
	OldPassword string `json:"old_password" valid:"required"`
	NewPassword string `json:"new_password" valid:"required"`
}

func (s *AuthService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := validate(&req); err != nil {
		return err
	}
	user, err := s.users.GetUser(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return domain.NewValidationError("old_password", "does not match")
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.logger.Info("Password changed", zap.String("user_id", user.ID))
	return nil
}
