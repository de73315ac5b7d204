package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ollema/skiftesgatan-sub000/internal/domain"
	"github.com/ollema/skiftesgatan-sub000/pkg/auth"
)

func newAuthFixture(t *testing.T) (*AuthSvc, *memUserStore) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	users := &memUserStore{users: make(map[string]domain.User)}
	return NewAuthSvc(users, 15*time.Minute, 72*time.Hour), users
}

func TestRegister(t *testing.T) {
	svc, users := newAuthFixture(t)

	u, err := svc.Register(context.Background(), "alva@example.com", "hunter22", "Alva", "a1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, domain.RoleResident, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter22")))
	assert.Len(t, users.users, 1)

	_, err = svc.Register(context.Background(), "alva@example.com", "other", "Alva B", "a2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Register(context.Background(), "alva@example.com", "hunter22", "Alva", "a1")
	require.NoError(t, err)

	u, access, refresh, err := svc.Login(context.Background(), "alva@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alva@example.com", u.Email)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := auth.ParseValidate(access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Sub)
	assert.Equal(t, string(domain.RoleResident), claims.Role)
	assert.Equal(t, "a1", claims.Apartment)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Register(context.Background(), "alva@example.com", "hunter22", "Alva", "a1")
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "alva@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = svc.Login(context.Background(), "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
