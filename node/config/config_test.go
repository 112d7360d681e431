package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	n, err := cfg.ActiveNetwork()
	require.NoError(t, err)
	require.Equal(t, DefaultTreasury, n.Treasury)
	require.Equal(t, "0.015", n.TxCostAllowance)
	require.Equal(t, Duration(10*time.Minute), cfg.Retry.AttestationTimeout)
	require.Equal(t, Duration(5*time.Second), cfg.Retry.ClaimRetryDelay)
	require.Equal(t, 3, cfg.Retry.ClaimMaxAttempts)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	// missing file -> defaults
	cfg, err := FromFile(path, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	content := `
Network = "mainnet"

[Networks.mainnet]
  GatewayURL = "https://gateway.example.com/rpc/v0"

[Networks.devnet]
  GatewayURL = "http://localhost:9999/rpc/v0"
  Treasury = "devtreasury"
  BridgedToken = "0x1::coin::COIN"
  StorageToken = "0x2::wal::WAL"
  TxCostAllowance = "0"

[Fees]
  UnsponsoredPercent = "0.03"

[Retry]
  AttestationTimeout = "20m0s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	res, err := FromFile(path, DefaultConfig())
	require.NoError(t, err)
	c := res.(*Config)
	require.NoError(t, c.Validate())

	n, err := c.ActiveNetwork()
	require.NoError(t, err)
	require.Equal(t, "https://gateway.example.com/rpc/v0", n.GatewayURL)
	// fields not in the file keep their defaults
	require.Equal(t, DefaultConfig().Networks[NetworkMainnet].StorageToken, n.StorageToken)
	require.Equal(t, "devtreasury", c.Networks["devnet"].Treasury)
	require.Equal(t, "0.03", c.Fees.UnsponsoredPercent)
	require.Equal(t, "0.01", c.Fees.SponsoredPercent)
	require.Equal(t, Duration(20*time.Minute), c.Retry.AttestationTimeout)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("WALRUS_BRIDGE_NETWORK", "mainnet")
	t.Setenv("WALRUS_BRIDGE_RETRY_CLAIMRETRYDELAY", "7s")

	res, err := FromReader(strings.NewReader(""), DefaultConfig())
	require.NoError(t, err)
	c := res.(*Config)
	require.Equal(t, NetworkMainnet, c.Network)
	require.Equal(t, Duration(7*time.Second), c.Retry.ClaimRetryDelay)
}

func TestValidate(t *testing.T) {
	tcs := map[string]func(c *Config){
		"unknown network":  func(c *Config) { c.Network = "nowhere" },
		"fee of 100%":      func(c *Config) { c.Fees.SponsoredPercent = "1" },
		"bad fee":          func(c *Config) { c.Fees.UnsponsoredPercent = "two" },
		"no claims":        func(c *Config) { c.Retry.ClaimMaxAttempts = 0 },
		"no timeout":       func(c *Config) { c.Retry.AttestationTimeout = 0 },
		"no treasury":      func(c *Config) { c.Networks[NetworkTestnet].Treasury = "" },
		"slippage too big": func(c *Config) { c.Swap.SlippageBps = 10000 },
	}
	for name, mutate := range tcs {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mutate(c)
			require.Error(t, c.Validate())
		})
	}
}

func TestConfigUpdate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network = NetworkMainnet
	cfg.Swap.SlippageBps = 50

	out, err := ConfigUpdate(cfg, DefaultConfig(), true)
	require.NoError(t, err)
	s := string(out)

	// non-default values are not commented out
	require.Contains(t, s, "\nNetwork = \"mainnet\"")
	require.Contains(t, s, "  SlippageBps = 50")
	// default values are
	require.Contains(t, s, "#ClaimMaxAttempts = 3")
	require.Contains(t, s, "# env var: WALRUS_BRIDGE_RETRY_CLAIMMAXATTEMPTS")
	require.Contains(t, s, "# Maximum slippage in basis points")

	// the output decodes back to the same config
	var decoded Config
	_, err = toml.NewDecoder(bytes.NewReader(out)).Decode(&decoded)
	require.NoError(t, err)
	require.Equal(t, NetworkMainnet, decoded.Network)
	require.EqualValues(t, 50, decoded.Swap.SlippageBps)
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	require.Equal(t, Duration(90*time.Second), d)
	b, err := d.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "1m30s", string(b))
	require.Error(t, d.UnmarshalText([]byte("soon")))
}
