package services

import (
	"context"
	"testing"
	"time"

	"github.com/farellandr/museum-tickets/internal/helpers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(users *fakeUsers) *AuthService {
	s := NewAuthService(users, AuthSettings{
		Secret:     "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	s.now = time.Now
	return s
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	s := newTestAuthService(users)

	admin, err := s.CreateAdmin(ctx, AdminInput{
		Email:     "admin@museo.com",
		Password:  "s3cret",
		FirstName: "Ana",
		LastName:  "Perez",
	})
	require.NoError(t, err)

	result, err := s.Login(ctx, "admin@museo.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, Profile{ID: admin.ID, Email: "admin@museo.com", Name: "Ana Perez", Role: "admin"}, result.User)

	claims, err := helpers.ParseAccessToken("test-secret", result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID.String(), claims.Subject)
	assert.Equal(t, "admin@museo.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "Ana Perez", claims.Name)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	s := newTestAuthService(users)

	admin, err := s.CreateAdmin(ctx, AdminInput{Email: "admin@museo.com", Password: "s3cret"})
	require.NoError(t, err)

	_, wrongPassword := s.Login(ctx, "admin@museo.com", "nope")
	_, unknownUser := s.Login(ctx, "ghost@museo.com", "s3cret")

	assert.Equal(t, KindUnauthorized, KindOf(wrongPassword))
	assert.Equal(t, KindUnauthorized, KindOf(unknownUser))
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())

	users.users[admin.ID].IsActive = false
	_, inactive := s.Login(ctx, "admin@museo.com", "s3cret")
	assert.Equal(t, KindUnauthorized, KindOf(inactive))
}

func TestAuthService_GetProfile(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	s := newTestAuthService(users)

	admin, err := s.CreateAdmin(ctx, AdminInput{Email: "admin@museo.com", Password: "s3cret", FirstName: "Ana"})
	require.NoError(t, err)

	profile, err := s.GetProfile(ctx, admin.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.Name)
	assert.Equal(t, "admin", profile.Role)

	_, err = s.GetProfile(ctx, uuid.NewString())
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	s := newTestAuthService(users)
	input := AdminInput{Email: "admin@museo.com", Password: "s3cret"}

	created, err := s.EnsureAdmin(ctx, input)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureAdmin(ctx, input)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, users.users, 1)

	_, err = s.CreateAdmin(ctx, input)
	assert.Equal(t, KindBadRequest, KindOf(err))
}
