package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_SaltedAndVerifiable(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("password1")
	require.NoError(t, err)
	h2, err := HashPassword("password1")
	require.NoError(t, err)

	assert.NotEqual(t, "password1", h1)
	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword(h1, "password1"))
	assert.True(t, CheckPassword(h2, "password1"))
}

func TestCheckPassword_Mismatch(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("password1")
	require.NoError(t, err)

	assert.False(t, CheckPassword(h, "password2"))
	assert.False(t, CheckPassword("not-a-hash", "password1"))
}

func TestHashPassword_TooLong(t *testing.T) {
	t.Parallel()

	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	h, err := HashPasswordCost(strings.Repeat("a", MaxPasswordBytes), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, strings.Repeat("a", MaxPasswordBytes)))
}

func TestCompareDummy(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { CompareDummy("anything") })
	assert.NotEmpty(t, dummyHash())
}
