package ageseal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealUnsealRoundTrip(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "identity.age")
	require.NoError(t, GenerateIdentityFile(keyPath))

	protector, err := LoadFromFile(keyPath)
	require.NoError(t, err)

	sealed, err := protector.Seal("sk-super-secret")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "sk-super-secret")

	plain, err := protector.Unseal(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-super-secret", plain)
}

func TestGenerateIdentityFileIsIdempotent(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "identity.age")
	require.NoError(t, GenerateIdentityFile(keyPath))
	first, err := LoadFromFile(keyPath)
	require.NoError(t, err)

	require.NoError(t, GenerateIdentityFile(keyPath))
	second, err := LoadFromFile(keyPath)
	require.NoError(t, err)

	sealed, err := first.Seal("value")
	require.NoError(t, err)
	plain, err := second.Unseal(sealed)
	require.NoError(t, err)
	assert.Equal(t, "value", plain)
}

func TestUnsealRejectsUnsealedInput(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "identity.age")
	require.NoError(t, GenerateIdentityFile(keyPath))
	protector, err := LoadFromFile(keyPath)
	require.NoError(t, err)

	_, err = protector.Unseal("plain-text-not-sealed")
	assert.Error(t, err)
}
