package services

import (
	"testing"

	"carpinteria_backend/internal/models"
	"carpinteria_backend/internal/repositories"
	"carpinteria_backend/internal/services/dto"
	"carpinteria_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Profile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repositories.NewUserRepository())
	user := createUser(t, db, models.UserRoleClient, "cliente@correo.es")

	name, city := "Marta Gil", "Zaragoza"
	updated, err := svc.UpdateProfile(testCtx, db, user.ID, &dto.UpdateProfileRequest{Name: &name, City: &city})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, city, updated.City)
	assert.Equal(t, models.UserRoleClient, updated.Role)

	_, err = svc.GetProfile(testCtx, db, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_AdminCannotModifySelf(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repositories.NewUserRepository())
	admin := createUser(t, db, models.UserRoleAdmin, "admin@taller.es")
	client := createUser(t, db, models.UserRoleClient, "cliente@correo.es")

	_, err := svc.UpdateUserRole(testCtx, db, admin.ID, admin.ID, models.UserRoleClient)
	assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)

	_, err = svc.UpdateUserStatus(testCtx, db, admin.ID, admin.ID, models.UserStatusSuspended)
	assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)

	promoted, err := svc.UpdateUserRole(testCtx, db, admin.ID, client.ID, models.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, promoted.Role)

	suspended, err := svc.UpdateUserStatus(testCtx, db, admin.ID, client.ID, models.UserStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, suspended.Status)

	_, err = svc.UpdateUserRole(testCtx, db, admin.ID, client.ID, models.UserRole("superuser"))
	require.Error(t, err)

	_, err = svc.UpdateUserStatus(testCtx, db, admin.ID, "00000000-0000-0000-0000-000000000000", models.UserStatusActive)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_ListUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repositories.NewUserRepository())
	createUser(t, db, models.UserRoleAdmin, "admin@taller.es")
	createUser(t, db, models.UserRoleClient, "ana@correo.es")
	createUser(t, db, models.UserRoleClient, "luis@correo.es")

	resp, err := svc.ListUsers(testCtx, db, &dto.UserListQuery{Role: string(models.UserRoleClient)}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.Total)
	assert.Len(t, resp.Users, 2)

	resp, err = svc.ListUsers(testCtx, db, &dto.UserListQuery{Search: "luis"}, 1, 20)
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "luis@correo.es", resp.Users[0].Email)
}
