package credential_test

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/matchbox/internal/credential"
)

func TestVault(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	v := credential.NewVaultWith(func() (keyring.Keyring, error) { return ring, nil })

	_, err := v.LoadToken()
	assert.ErrorIs(t, err, credential.ErrNotFound)

	require.NoError(t, v.SaveToken("tok-1"))
	require.NoError(t, v.SaveToken("tok-2"))

	got, err := v.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got)

	require.NoError(t, v.DeleteToken())
	require.NoError(t, v.DeleteToken(), "deleting twice is fine")

	_, err = v.LoadToken()
	assert.ErrorIs(t, err, credential.ErrNotFound)
}
