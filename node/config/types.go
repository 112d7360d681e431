package config

// Config is the walrus-bridge configuration, stored as config.toml in the
// repo directory.
type Config struct {
	// The version of the config file (used for migrations)
	ConfigVersion int

	// The network the saga runs against. Must be a key of Networks.
	Network string

	Networks map[string]*NetworkConfig
	Fees     FeeConfig
	Retry    RetryConfig
	Swap     SwapConfig
	Storage  StorageConfig
	Metrics  MetricsConfig
}

type NetworkConfig struct {
	// The JSON-RPC endpoint of the gateway that fronts the source ledger,
	// the bridge, the swap aggregator and the storage network
	GatewayURL string
	// Bearer token sent to the gateway, if any
	GatewayToken string
	// The address on the source ledger that receives protocol fees
	Treasury string
	// Coin type of the bridged source asset on the destination ledger
	BridgedToken string
	// Coin type of the storage token on the destination ledger
	StorageToken string
	// Storage network system object
	SystemObjectID string
	// Storage network staking pool object
	StakingPoolID string
	// Added to every storage quote to cover destination transaction gas
	TxCostAllowance string
}

type FeeConfig struct {
	// Fee fraction charged when the swap route is gas sponsored
	SponsoredPercent string
	// Fee fraction charged otherwise
	UnsponsoredPercent string
}

type RetryConfig struct {
	QuoteMaxAttempts    int
	FeeMaxAttempts      int
	InitiateMaxAttempts int
	// The number of times a claim is attempted when it fails with a known
	// transient error
	ClaimMaxAttempts int
	// The fixed delay between claim attempts
	ClaimRetryDelay Duration
	// Hard limit on the time spent waiting for the bridge attestation
	AttestationTimeout  Duration
	FinalizeMaxAttempts int

	// Exponential backoff between retries of transient errors
	BackoffMin    Duration
	BackoffMax    Duration
	BackoffFactor float64
}

type SwapConfig struct {
	// Maximum slippage in basis points
	SlippageBps uint32
	// Try a gas sponsored route before the direct route when one is available
	PreferSponsored bool
}

type StorageConfig struct {
	// Epochs used when the upload command does not specify any
	DefaultEpochs uint32
	// Whether blobs are deletable when the upload command does not say
	DefaultDeletable bool
	// How long a storage quote is reused for the same size and epochs
	QuoteCacheTTL Duration
}

type MetricsConfig struct {
	// Address the prometheus metrics endpoint listens on. Empty disables it.
	ListenAddress string
}
