package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

func TestRegisterCreatesCitizen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, token, err := f.accounts.Register(ctx, "Asha Rao", " Asha@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCitizen, user.Role)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NotEmpty(t, token.Value)

	claims, err := f.accounts.Tokens().ParseToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, _, err = f.accounts.Register(ctx, "Other", "ASHA@example.com", "secret2")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, err := f.accounts.Register(ctx, "Asha Rao", "asha@example.com", "secret1")
	require.NoError(t, err)

	user, token, err := f.accounts.Login(ctx, "ASHA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", user.Name)
	assert.Equal(t, domain.RoleCitizen, token.Role)

	_, _, err = f.accounts.Login(ctx, "asha@example.com", "wrong-password")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
	_, _, err = f.accounts.Login(ctx, "nobody@example.com", "secret1")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestUpdateProfileAndPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asha := f.user(t, "asha", domain.RoleCitizen)
	f.user(t, "ravi", domain.RoleStaff)

	name := "Asha R."
	updated, err := f.accounts.UpdateProfile(ctx, asha.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Asha R.", updated.Name)
	assert.Equal(t, "asha@example.com", updated.Email)

	taken := "RAVI@example.com"
	_, err = f.accounts.UpdateProfile(ctx, asha.ID, nil, &taken)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	err = f.accounts.ChangePassword(ctx, asha.ID, "not-it", "newsecret")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
	require.NoError(t, f.accounts.ChangePassword(ctx, asha.ID, "secret1", "newsecret"))
	_, _, err = f.accounts.Login(ctx, "asha@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestCreateUserValidatesRoleAndDepartment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accounts.CreateUser(ctx, CreateUserInput{Name: "x", Email: "x@example.com", Password: "secret1", Role: "root"})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	missing := "9c1b7a2e-5d4f-4e3a-8b2c-1a0f9e8d7c6b"
	_, err = f.accounts.CreateUser(ctx, CreateUserInput{Name: "x", Email: "x@example.com", Password: "secret1", Role: domain.RoleStaff, DepartmentID: &missing})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	dept := f.department(t, "Roads")
	user, err := f.accounts.CreateUser(ctx, CreateUserInput{Name: "x", Email: "x@example.com", Password: "secret1", Role: domain.RoleAdmin, DepartmentID: &dept.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	users, err := f.accounts.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
