package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kendall-kelly/bistro-orders-api/config"
	"github.com/kendall-kelly/bistro-orders-api/models"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		JWTIssuer:        "bistro-orders-api",
		JWTAudience:      "bistro-web",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  time.Hour,
	}
}

func newAuthFixture(t *testing.T) (*AuthService, context.Context) {
	t.Helper()
	db := setupTestDB(t)
	return NewAuthService(db, testAuthConfig()), context.Background()
}

func TestAuthService_Register(t *testing.T) {
	svc, ctx := newAuthFixture(t)

	user, err := svc.Register(ctx, RegisterInput{Email: "  Ana@Example.com ", Password: "parola123", Name: "Ana"})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, models.RoleClient, user.Role)
	assert.NotEqual(t, "parola123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("parola123")))
}

func TestAuthService_RegisterRejected(t *testing.T) {
	svc, ctx := newAuthFixture(t)
	_, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "parola123"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input RegisterInput
		kind  error
	}{
		{name: "duplicate email", input: RegisterInput{Email: "ANA@example.com", Password: "parola123"}, kind: ErrConflict},
		{name: "short password", input: RegisterInput{Email: "ion@example.com", Password: "short"}, kind: ErrValidation},
		{name: "missing email", input: RegisterInput{Password: "parola123"}, kind: ErrValidation},
		{name: "malformed email", input: RegisterInput{Email: "not-an-email", Password: "parola123"}, kind: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Register(ctx, tt.input)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, ctx := newAuthFixture(t)
	registered, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "parola123"})
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "ana@example.com", "parola123")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, registered.ID, pair.User.ID)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	var claims AccessClaims
	_, err = jwt.ParseWithClaims(pair.AccessToken, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-access-secret"), nil
	}, jwt.WithAudience("bistro-web"), jwt.WithIssuer("bistro-orders-api"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, claims.Role)
	assert.Equal(t, strconv.FormatUint(uint64(registered.ID), 10), claims.Subject)

	me, err := svc.Me(ctx, registered.ID)
	require.NoError(t, err)
	assert.NotNil(t, me.LastLoginAt)
}

func TestAuthService_LoginRejected(t *testing.T) {
	svc, ctx := newAuthFixture(t)
	_, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "parola123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Login(ctx, "nobody@example.com", "parola123")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_RefreshRotates(t *testing.T) {
	svc, ctx := newAuthFixture(t)
	_, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "parola123"})
	require.NoError(t, err)
	first, err := svc.Login(ctx, "ana@example.com", "parola123")
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The rotated token cannot be replayed
	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_RefreshRejected(t *testing.T) {
	svc, ctx := newAuthFixture(t)
	_, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "parola123"})
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "ana@example.com", "parola123")
	require.NoError(t, err)

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { svc.now = time.Now }()

		_, err := svc.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestAuthService_Logout(t *testing.T) {
	svc, ctx := newAuthFixture(t)
	_, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "parola123"})
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "ana@example.com", "parola123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	svc, ctx := newAuthFixture(t)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@bistro.ro", "admin-secret"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@bistro.ro", "another-secret"))

	pair, err := svc.Login(ctx, "admin@bistro.ro", "admin-secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, pair.User.Role)
	assert.Equal(t, int64(1), countRows(t, svc.db, &models.User{}))
}

func TestAuthService_MeNotFound(t *testing.T) {
	svc, ctx := newAuthFixture(t)

	_, err := svc.Me(ctx, 777)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, ctx := newAuthFixture(t)
	user, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "parola123", Name: "Ana"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, "  Ana Popescu ")
	require.NoError(t, err)
	assert.Equal(t, "Ana Popescu", updated.Name)

	_, err = svc.UpdateProfile(ctx, user.ID, " ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateProfile(ctx, 999, "Ion")
	assert.ErrorIs(t, err, ErrNotFound)
}
