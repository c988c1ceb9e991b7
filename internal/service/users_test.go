package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/doc_service/internal/dbtest"
	"github.com/Skotchmaster/doc_service/internal/hash"
	"github.com/Skotchmaster/doc_service/internal/models"
	"github.com/Skotchmaster/doc_service/internal/repo"
)

func TestGeneratePassword(t *testing.T) {
	t.Parallel()

	a, err := generatePassword()
	require.NoError(t, err)
	b, err := generatePassword()
	require.NoError(t, err)
	assert.Len(t, a, generatedPasswordLen)
	assert.NotEqual(t, a, b)
}

func TestUsersService_CreateGetUpdate(t *testing.T) {
	t.Parallel()

	r := repo.New(dbtest.Open(t))
	svc := &UsersService{Repo: r}
	ctx := context.Background()

	created, err := svc.Create(ctx, "carol@x.com", "editor")
	require.NoError(t, err)
	assert.Equal(t, "carol@x.com", created.Email)
	assert.Equal(t, models.RoleEditor, created.Role)
	require.Len(t, created.Password, generatedPasswordLen)

	cred, err := r.FindByUsername(ctx, "carol@x.com")
	require.NoError(t, err)
	assert.True(t, hash.CheckPassword(cred.PasswordHash, created.Password))

	_, err = svc.Create(ctx, "carol@x.com", "viewer")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Create(ctx, "nope", "viewer")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, "dave@x.com", "owner")
	assert.ErrorIs(t, err, ErrValidation)

	dflt, err := svc.Create(ctx, "dave@x.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, dflt.Role)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	u, err := svc.UpdateRole(ctx, created.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = svc.UpdateRole(ctx, created.ID, "superuser")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateRole(ctx, 999, "admin")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsersService_Create_ConflictNamesTheTakenField(t *testing.T) {
	t.Parallel()

	r := repo.New(dbtest.Open(t))
	svc := &UsersService{Repo: r}
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Credential{
		Username:     "erin@x.com",
		PasswordHash: "h",
		User:         models.User{Email: "erin.other@x.com", Role: models.RoleViewer},
	}))
	require.NoError(t, r.Create(ctx, &models.Credential{
		Username:     "frank",
		PasswordHash: "h",
		User:         models.User{Email: "frank@x.com", Role: models.RoleViewer},
	}))

	_, err := svc.Create(ctx, "erin@x.com", "viewer")
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), `username "erin@x.com" already exists`)
	assert.NotContains(t, err.Error(), "email")

	_, err = svc.Create(ctx, "frank@x.com", "viewer")
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "email already exists")
}

func TestUsersService_Delete_RemovesBlobsBestEffort(t *testing.T) {
	t.Parallel()

	r := repo.New(dbtest.Open(t))
	blobs := &blobMock{}
	index := &indexMock{}
	svc := &UsersService{Repo: r, Blobs: blobs, Index: index}
	ctx := context.Background()

	created, err := svc.Create(ctx, "erin@x.com", "viewer")
	require.NoError(t, err)
	require.NoError(t, r.CreateDocument(ctx, &models.Document{Title: "a", Description: "a", StorageKey: "k1", UserID: created.ID}))
	require.NoError(t, r.CreateDocument(ctx, &models.Document{Title: "b", Description: "b", StorageKey: "k2", UserID: created.ID}))

	blobs.On("Remove", mock.Anything, "k1").Return(errors.New("s3 down")).Once()
	blobs.On("Remove", mock.Anything, "k2").Return(nil).Once()
	index.On("DeleteOwner", mock.Anything, created.ID).Return(nil).Once()

	require.NoError(t, svc.Delete(ctx, created.ID))
	blobs.AssertExpectations(t)
	index.AssertExpectations(t)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.FindByUsername(ctx, "erin@x.com")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}
