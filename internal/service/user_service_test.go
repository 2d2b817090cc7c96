package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
)

func newUserFixture(t *testing.T) (UserService, *MockUserRepository) {
	t.Helper()
	repo := NewMockUserRepository()
	for _, u := range []*domain.User{
		{FirstName: "Admin", LastName: "Root", Email: "admin@example.com", Role: domain.RoleAdmin, IsActive: true},
		{FirstName: "Ana", LastName: "Perez", Email: "ana@example.com", Role: domain.RoleStandard, IsActive: true},
		{FirstName: "Luis", LastName: "Diaz", Email: "luis@example.com", Role: domain.RoleStandard, IsActive: true},
	} {
		require.NoError(t, repo.Create(context.Background(), u))
	}
	return NewUserService(repo), repo
}

func str(s string) *string { return &s }

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update keeps other fields", func(t *testing.T) {
		svc, _ := newUserFixture(t)

		user, err := svc.UpdateUser(ctx, 2, &dto.UpdateUserRequest{LastName: str("Gomez"), Role: str("admin")})
		require.NoError(t, err)
		assert.Equal(t, "Ana", user.FirstName)
		assert.Equal(t, "Gomez", user.LastName)
		assert.Equal(t, "ana@example.com", user.Email)
		assert.Equal(t, domain.RoleAdmin, user.Role)
	})

	t.Run("email taken by another user", func(t *testing.T) {
		svc, _ := newUserFixture(t)

		_, err := svc.UpdateUser(ctx, 2, &dto.UpdateUserRequest{Email: str("Luis@Example.com")})
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("invalid request", func(t *testing.T) {
		svc, _ := newUserFixture(t)

		_, err := svc.UpdateUser(ctx, 2, &dto.UpdateUserRequest{})
		assert.ErrorIs(t, err, domain.ErrInvalidUserData)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newUserFixture(t)

		_, err := svc.UpdateUser(ctx, 99, &dto.UpdateUserRequest{Phone: str("555")})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserService_DeactivateUser(t *testing.T) {
	ctx := context.Background()
	svc, repo := newUserFixture(t)

	err := svc.DeactivateUser(ctx, 1, 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.True(t, repo.users[1].IsActive)

	require.NoError(t, svc.DeactivateUser(ctx, 3, 1))
	assert.False(t, repo.users[3].IsActive)
	assert.ErrorIs(t, svc.DeactivateUser(ctx, 3, 1), domain.ErrUserNotFound)

	active, err := svc.ListUsers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := svc.ListUsers(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	u, err := svc.GetUser(ctx, 3)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}
