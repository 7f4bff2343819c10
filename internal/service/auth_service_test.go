package service

import (
	"context"
	"testing"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) (*fixture, AuthService) {
	t.Helper()
	f := newFixture(t)
	return f, NewAuthService(repository.NewUserRepository(f.db), f.cfg)
}

func TestLogin_IssuesAccessAndRefresh(t *testing.T) {
	f, auth := newAuth(t)
	ctx := context.Background()

	resp, err := auth.Login(ctx, dto.LoginRequest{Username: "clerk", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, session.RoleEmployee, resp.User.Role)
	assert.NotNil(t, resp.User.LastLoginAt)

	claims := &TokenClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(f.cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, TokenAccess, claims.TokenType)
	assert.Equal(t, f.clerk.UserID.String(), claims.UserID)

	refreshed, err := auth.Refresh(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// an access token cannot be used as a refresh token
	_, err = auth.Refresh(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_Rejects(t *testing.T) {
	_, auth := newAuth(t)
	ctx := context.Background()

	_, err := auth.Login(ctx, dto.LoginRequest{Username: "clerk", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserManagement(t *testing.T) {
	f, auth := newAuth(t)
	ctx := context.Background()

	u, err := auth.CreateUser(ctx, dto.CreateUserRequest{Username: "maria", Name: "Maria", Password: "pass1234", Role: session.RoleEmployee})
	require.NoError(t, err)

	_, err = auth.CreateUser(ctx, dto.CreateUserRequest{Username: "maria", Name: "Other", Password: "pass1234", Role: session.RoleEmployee})
	assert.ErrorIs(t, err, ErrDuplicate)

	id := uuid.MustParse(u.ID)
	require.NoError(t, auth.DeactivateUser(ctx, f.owner, id))
	_, err = auth.Login(ctx, dto.LoginRequest{Username: "maria", Password: "pass1234"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, auth.ReactivateUser(ctx, id))
	_, err = auth.Login(ctx, dto.LoginRequest{Username: "maria", Password: "pass1234"})
	require.NoError(t, err)

	assert.ErrorIs(t, auth.DeactivateUser(ctx, f.owner, f.owner.UserID), ErrSelfDeactivate)
}

func TestEnsureOwner_OnlyWhenMissing(t *testing.T) {
	_, auth := newAuth(t)
	created, err := auth.EnsureOwner(context.Background(), "boss", "boss-pass")
	require.NoError(t, err)
	assert.False(t, created, "fixture already has an owner")
}
