package saga

import (
	"fmt"
	"time"

	"github.com/jhuhnke/solana-walrus/node/config"
	"github.com/jhuhnke/solana-walrus/saga/types"
)

// ConfigFromNode builds the saga configuration for the active network of cfg.
func ConfigFromNode(cfg *config.Config) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	n, err := cfg.ActiveNetwork()
	if err != nil {
		return Config{}, err
	}

	allowance, err := types.ParseAmount(n.TxCostAllowance)
	if err != nil {
		return Config{}, fmt.Errorf("TxCostAllowance: %w", err)
	}
	sponsored, err := types.ParseFeePercent(cfg.Fees.SponsoredPercent)
	if err != nil {
		return Config{}, fmt.Errorf("Fees.SponsoredPercent: %w", err)
	}
	unsponsored, err := types.ParseFeePercent(cfg.Fees.UnsponsoredPercent)
	if err != nil {
		return Config{}, fmt.Errorf("Fees.UnsponsoredPercent: %w", err)
	}

	return Config{
		Network:               cfg.Network,
		Treasury:              n.Treasury,
		BridgedToken:          n.BridgedToken,
		StorageToken:          n.StorageToken,
		TxCostAllowance:       allowance,
		SponsoredFeePercent:   sponsored,
		UnsponsoredFeePercent: unsponsored,
		PreferSponsored:       cfg.Swap.PreferSponsored,
		SlippageBps:           cfg.Swap.SlippageBps,
		QuoteCacheTTL:         time.Duration(cfg.Storage.QuoteCacheTTL),
		QuoteMaxAttempts:      cfg.Retry.QuoteMaxAttempts,
		FeeMaxAttempts:        cfg.Retry.FeeMaxAttempts,
		InitiateMaxAttempts:   cfg.Retry.InitiateMaxAttempts,
		ClaimMaxAttempts:      cfg.Retry.ClaimMaxAttempts,
		ClaimRetryDelay:       time.Duration(cfg.Retry.ClaimRetryDelay),
		AttestationTimeout:    time.Duration(cfg.Retry.AttestationTimeout),
		FinalizeMaxAttempts:   cfg.Retry.FinalizeMaxAttempts,
		BackoffMin:            time.Duration(cfg.Retry.BackoffMin),
		BackoffMax:            time.Duration(cfg.Retry.BackoffMax),
		BackoffFactor:         cfg.Retry.BackoffFactor,
	}, nil
}
