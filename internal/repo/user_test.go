package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/doc_service/internal/dbtest"
	"github.com/Skotchmaster/doc_service/internal/models"
)

func TestUsers_ListGetUpdate(t *testing.T) {
	t.Parallel()

	r := New(dbtest.Open(t))
	ctx := context.Background()
	a := newCredential("a", "a@x.com")
	b := newCredential("b", "b@x.com")
	require.NoError(t, r.Create(ctx, a))
	require.NoError(t, r.Create(ctx, b))

	users, err := r.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@x.com", users[0].Email)

	u, err := r.UpdateUserRole(ctx, b.UserID, models.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, u.Role)

	got, err := r.GetUser(ctx, b.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, got.Role)

	_, err = r.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.UpdateUserRole(ctx, 999, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)
}
