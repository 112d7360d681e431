package config

import (
	"reflect"
	"strings"
)

type DocField struct {
	Name    string
	Type    string
	Comment string
}

// Doc holds the documentation emitted next to each key of a generated
// config file. Keep it in sync with types.go.
var Doc = map[string][]DocField{
	"Config": {
		{Name: "ConfigVersion", Type: "int", Comment: "The version of the config file (used for migrations)"},
		{Name: "Network", Type: "string", Comment: "The network the saga runs against. Must be a key of Networks."},
		{Name: "Networks", Type: "NetworkConfig"},
		{Name: "Fees", Type: "FeeConfig"},
		{Name: "Retry", Type: "RetryConfig"},
		{Name: "Swap", Type: "SwapConfig"},
		{Name: "Storage", Type: "StorageConfig"},
		{Name: "Metrics", Type: "MetricsConfig"},
	},
	"NetworkConfig": {
		{Name: "GatewayURL", Type: "string", Comment: "The JSON-RPC endpoint of the gateway that fronts the source ledger,\nthe bridge, the swap aggregator and the storage network"},
		{Name: "GatewayToken", Type: "string", Comment: "Bearer token sent to the gateway, if any"},
		{Name: "Treasury", Type: "string", Comment: "The address on the source ledger that receives protocol fees"},
		{Name: "BridgedToken", Type: "string", Comment: "Coin type of the bridged source asset on the destination ledger"},
		{Name: "StorageToken", Type: "string", Comment: "Coin type of the storage token on the destination ledger"},
		{Name: "SystemObjectID", Type: "string", Comment: "Storage network system object"},
		{Name: "StakingPoolID", Type: "string", Comment: "Storage network staking pool object"},
		{Name: "TxCostAllowance", Type: "string", Comment: "Added to every storage quote to cover destination transaction gas"},
	},
	"FeeConfig": {
		{Name: "SponsoredPercent", Type: "string", Comment: "Fee fraction charged when the swap route is gas sponsored"},
		{Name: "UnsponsoredPercent", Type: "string", Comment: "Fee fraction charged otherwise"},
	},
	"RetryConfig": {
		{Name: "QuoteMaxAttempts", Type: "int"},
		{Name: "FeeMaxAttempts", Type: "int"},
		{Name: "InitiateMaxAttempts", Type: "int"},
		{Name: "ClaimMaxAttempts", Type: "int", Comment: "The number of times a claim is attempted when it fails with a known\ntransient error"},
		{Name: "ClaimRetryDelay", Type: "Duration", Comment: "The fixed delay between claim attempts"},
		{Name: "AttestationTimeout", Type: "Duration", Comment: "Hard limit on the time spent waiting for the bridge attestation"},
		{Name: "FinalizeMaxAttempts", Type: "int"},
		{Name: "BackoffMin", Type: "Duration", Comment: "Exponential backoff between retries of transient errors"},
		{Name: "BackoffMax", Type: "Duration"},
		{Name: "BackoffFactor", Type: "float64"},
	},
	"SwapConfig": {
		{Name: "SlippageBps", Type: "uint32", Comment: "Maximum slippage in basis points"},
		{Name: "PreferSponsored", Type: "bool", Comment: "Try a gas sponsored route before the direct route when one is available"},
	},
	"StorageConfig": {
		{Name: "DefaultEpochs", Type: "uint32", Comment: "Epochs used when the upload command does not specify any"},
		{Name: "DefaultDeletable", Type: "bool", Comment: "Whether blobs are deletable when the upload command does not say"},
		{Name: "QuoteCacheTTL", Type: "Duration", Comment: "How long a storage quote is reused for the same size and epochs"},
	},
	"MetricsConfig": {
		{Name: "ListenAddress", Type: "string", Comment: "Address the prometheus metrics endpoint listens on. Empty disables it."},
	},
}

func findDoc(root interface{}, section, name string) *DocField {
	rt := reflect.TypeOf(root)
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}

	docSection := Doc[rt.Name()]
	if section != "" {
		for _, e := range strings.Split(section, ".") {
			// map keys such as network names do not change the section
			for _, field := range docSection {
				if field.Name == e {
					docSection = Doc[field.Type]
					break
				}
			}
		}
	}

	for _, df := range docSection {
		if df.Name == name {
			return &df
		}
	}
	return nil
}
