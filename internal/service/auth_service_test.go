package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/config"
	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T, users ...*domain.User) (*AuthService, *memUsers) {
	t.Helper()
	repo := newMemUsers(users...)
	svc := NewAuthService(repo, config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, Issuer: "kimoncrm"}, zap.NewNop())
	return svc, repo
}

func testUser(t *testing.T, id, email, password string, active bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: id, Email: email, Name: "Test", Role: domain.RoleManager, IsActive: active, PasswordHash: string(hash)}
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newTestAuth(t,
		testUser(t, "u1", "maria@kimon.gr", "correct-horse", true),
		testUser(t, "u2", "off@kimon.gr", "correct-horse", false),
	)
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{Email: "  Maria@Kimon.gr ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	claims, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, domain.RoleManager, claims.Role)
	assert.Equal(t, "maria@kimon.gr", claims.Email)

	tests := []struct {
		name string
		req  LoginRequest
		want error
	}{
		{"wrong password", LoginRequest{Email: "maria@kimon.gr", Password: "nope-nope"}, domain.ErrUnauthorized},
		{"unknown email", LoginRequest{Email: "ghost@kimon.gr", Password: "correct-horse"}, domain.ErrUnauthorized},
		{"inactive", LoginRequest{Email: "off@kimon.gr", Password: "correct-horse"}, domain.ErrUnauthorized},
		{"invalid email", LoginRequest{Email: "not-an-email", Password: "x"}, domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAuthService_ParseToken_Rejects(t *testing.T) {
	svc, _ := newTestAuth(t)
	user := &domain.User{ID: "u1", Email: "a@kimon.gr", Role: domain.RoleUser}

	t.Run("expired", func(t *testing.T) {
		token, _, err := svc.IssueToken(user)
		require.NoError(t, err)
		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { svc.now = time.Now }()
		_, err = svc.ParseToken(token)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})

	t.Run("other secret", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "kimoncrm",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		}).SignedString([]byte("someone-else"))
		require.NoError(t, err)
		_, err = svc.ParseToken(token)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "kimoncrm"},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ParseToken(token)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewAuthService(newMemUsers(), config.AuthConfig{JWTSecret: "test-secret", Issuer: "elsewhere"}, zap.NewNop())
		token, _, err := other.IssueToken(user)
		require.NoError(t, err)
		_, err = svc.ParseToken(token)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	active := testUser(t, "u1", "a@kimon.gr", "password1", true)
	svc, repo := newTestAuth(t, active)

	token, _, err := svc.IssueToken(active)
	require.NoError(t, err)
	u, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	require.NoError(t, repo.DeleteUser(context.Background(), "u1"))
	_, err = svc.Authenticate(context.Background(), token)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, repo := newTestAuth(t, testUser(t, "u1", "a@kimon.gr", "old-password", true))
	ctx := context.Background()

	err := svc.ChangePassword(ctx, ChangePasswordRequest{UserID: "u1", OldPassword: "wrong", NewPassword: "new-password"})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	err = svc.ChangePassword(ctx, ChangePasswordRequest{UserID: "u1", OldPassword: "old-password", NewPassword: "short"})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	require.NoError(t, svc.ChangePassword(ctx, ChangePasswordRequest{UserID: "u1", OldPassword: "old-password", NewPassword: "new-password"}))
	u, _ := repo.GetUser(ctx, "u1")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new-password")))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct-horse")))

	_, err = HashPassword("short")
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = HashPassword(strings.Repeat("a", 72))
	assert.NoError(t, err)

	// 37 two-byte runes: under 72 characters, over 72 bytes
	_, err = HashPassword(strings.Repeat("λ", 37))
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Contains(t, verr.Fields, "password")
}
