package config

import (
	"encoding"
	"time"
)

// CurrentVersion is the config version written by this release.
const CurrentVersion = 1

const (
	NetworkTestnet = "testnet"
	NetworkMainnet = "mainnet"
)

// DefaultTreasury is the source ledger address that receives protocol fees.
const DefaultTreasury = "GBMTWhsnLAPxLXcwDoFu45VrzBYuCyGU5eLSavksR1Qc"

func defNetworks() map[string]*NetworkConfig {
	return map[string]*NetworkConfig{
		NetworkTestnet: {
			GatewayURL:      "http://127.0.0.1:3560/rpc/v0",
			Treasury:        DefaultTreasury,
			BridgedToken:    "0xb7844e289a8410e50fb3ca48d69eb9cf29e27d223ef90353fe1bd8e27ff8f3f8::coin::COIN",
			StorageToken:    "0x356a26eb9e012a68958082340d4c4116e7f55615cf27affcff209cf0ae544f59::wal::WAL",
			SystemObjectID:  "0x6c2547cbbc38025cf3adac45f63cb0a8d12ecf777cdc75a4971612bf97fdf6af",
			StakingPoolID:   "0xbe46180321c30aab2f8b3501e24048377287fa708018a5b7c2792b35fe339ee3",
			TxCostAllowance: "0.015",
		},
		NetworkMainnet: {
			GatewayURL:      "http://127.0.0.1:3561/rpc/v0",
			Treasury:        DefaultTreasury,
			BridgedToken:    "0xbc03aaab4c11eb84df8bf39fdc714fa5d5b65b16eb7d155e22c74a68c8d4e17f::coin::COIN",
			StorageToken:    "0x8190b041122eb492bf63cb464476bd68c6b7e570a4079645a8b28732b6197a82::wal::WAL",
			SystemObjectID:  "0x2134d52768ea07e8c43570ef975eb3e4c27a39fa6396bef985b5abc58d03ddd2",
			StakingPoolID:   "0x10b9d30c28448939ce6c4d6c6e0ffce4a7f8a4ada8248bdad09ef8b70e4a3904",
			TxCostAllowance: "0.015",
		},
	}
}

func DefaultConfig() *Config {
	return &Config{
		ConfigVersion: CurrentVersion,
		Network:       NetworkTestnet,
		Networks:      defNetworks(),

		Fees: FeeConfig{
			SponsoredPercent:   "0.01",
			UnsponsoredPercent: "0.02",
		},

		Retry: RetryConfig{
			QuoteMaxAttempts:    3,
			FeeMaxAttempts:      5,
			InitiateMaxAttempts: 3,
			ClaimMaxAttempts:    3,
			ClaimRetryDelay:     Duration(5 * time.Second),
			AttestationTimeout:  Duration(10 * time.Minute),
			FinalizeMaxAttempts: 3,
			BackoffMin:          Duration(time.Second),
			BackoffMax:          Duration(30 * time.Second),
			BackoffFactor:       2,
		},

		Swap: SwapConfig{
			SlippageBps:     200,
			PreferSponsored: true,
		},

		Storage: StorageConfig{
			DefaultEpochs:    3,
			DefaultDeletable: true,
			QuoteCacheTTL:    Duration(30 * time.Second),
		},
	}
}

var _ encoding.TextMarshaler = (*Duration)(nil)
var _ encoding.TextUnmarshaler = (*Duration)(nil)

// Duration is a wrapper type for time.Duration
// for decoding and encoding from/to TOML
type Duration time.Duration

// UnmarshalText implements interface for TOML decoding
func (dur *Duration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*dur = Duration(d)
	return err
}

func (dur Duration) MarshalText() ([]byte, error) {
	d := time.Duration(dur)
	return []byte(d.String()), nil
}
