package cryptox_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vaultmind/accountd/pkg/cryptox"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.HashPassword("Secr3t!")
	require.NoError(t, err)
	require.NotEqual(t, "Secr3t!", hash)

	require.True(t, cryptox.VerifyPassword("Secr3t!", hash))
	require.False(t, cryptox.VerifyPassword("wrong", hash))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	t.Parallel()

	require.False(t, cryptox.VerifyPassword("anything", "not-a-bcrypt-hash"))
	require.False(t, cryptox.VerifyPassword("anything", ""))
}

func TestHashPasswordSalts(t *testing.T) {
	t.Parallel()

	a, err := cryptox.HashPassword("same-input")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same-input")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
