package node

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhuhnke/solana-walrus/node/config"
	"github.com/jhuhnke/solana-walrus/wallet"
)

func TestInitAndSetup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "repo")

	_, err := Setup(dir)
	require.ErrorContains(t, err, "walrus-bridge init")

	payer, err := Init(dir, config.NetworkMainnet)
	require.NoError(t, err)
	again, err := Init(dir, config.NetworkTestnet)
	require.NoError(t, err)
	require.Equal(t, payer, again)

	n, err := Setup(dir)
	require.NoError(t, err)
	defer n.Close() //nolint:errcheck

	// the config written by the first init wins
	require.Equal(t, config.NetworkMainnet, n.Config.Network)

	def, err := n.GetProvidedOrDefaultPayer("")
	require.NoError(t, err)
	require.Equal(t, payer, def)

	_, err = n.GetProvidedOrDefaultPayer("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	require.ErrorIs(t, err, wallet.ErrKeyNotFound)

	_, err = n.Wallet.Generate()
	require.NoError(t, err)
	_, err = n.GetProvidedOrDefaultPayer("")
	require.ErrorContains(t, err, "--payer")
}
