package saga

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/jhuhnke/solana-walrus/feecollector"
	"github.com/jhuhnke/solana-walrus/metrics"
	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

func (s *Saga) collectFee(ctx context.Context, uh *uploadHandler, st *types.UploadState, refreshQuote bool) error {
	key := st.IdempotencyKey(uploadcheckpoints.FeeCollecting)

	// A collection from an earlier run is settled against the amount it was
	// recorded with, and the quote it was collected against is kept
	prev, err := s.fees.Settled(ctx, key, st.Payer)
	if err != nil {
		return err
	}
	if prev != nil {
		st.Fee = *prev
		s.uploadLogger.Infow(st.ID, "fee collected in a previous run", "requested", prev.AmountRequested(),
			"fee", prev.AmountDebited(), "percent", prev.FeePercent(), "tx", prev.SourceTxID)
		return nil
	}

	if refreshQuote {
		if err := s.quoteUpload(ctx, st); err != nil {
			return fmt.Errorf("refreshing storage quote: %w", err)
		}
		if err := s.persist(uh, st); err != nil {
			return err
		}
	}

	// The tier is decided once, against the quoted amount, and kept for the
	// rest of the upload
	if st.FeeTier == types.FeeTierUnknown {
		tier, err := s.sponsorshipTier(ctx, st)
		if err != nil {
			return err
		}
		st.FeeTier = tier
		s.uploadLogger.Infow(st.ID, "fee tier decided", "tier", tier)
		if err := s.persist(uh, st); err != nil {
			return err
		}
	}
	pct := s.feePercent(st.FeeTier)

	signer, err := s.clients.Signers.SourceSigner(st.Payer)
	if err != nil {
		return fmt.Errorf("getting signer for payer %s: %w", st.Payer, err)
	}

	unlock, err := s.payers.lock(ctx, st.Payer)
	if err != nil {
		return err
	}
	defer unlock()

	st.Attempts[string(uploadcheckpoints.FeeCollecting)]++
	out, err := s.fees.Collect(ctx, feecollector.CollectParams{
		UploadID:       st.ID,
		Payer:          st.Payer,
		Signer:         signer,
		Amount:         st.Quote.TotalCost,
		FeePercent:     pct,
		IdempotencyKey: key,
	})
	if err != nil {
		return err
	}
	st.Fee = out

	s.uploadLogger.Infow(st.ID, "fee collected", "requested", out.AmountRequested(), "fee", out.AmountDebited(),
		"percent", out.FeePercent(), "remaining", out.RemainingForBridge(), "tx", out.SourceTxID)
	_ = stats.RecordWithTags(s.ctx, []tag.Mutator{tag.Upsert(metrics.FeeTier, string(st.FeeTier))},
		metrics.FeeCollected.M(out.AmountDebited().Decimal().InexactFloat64()))
	return nil
}

// sponsorshipTier checks whether a gas sponsored swap route exists for the
// quoted amount. No route means the unsponsored tier, a lookup that keeps
// failing fails the step.
func (s *Saga) sponsorshipTier(ctx context.Context, st *types.UploadState) (types.FeeTier, error) {
	if s.cfg.BridgedToken == s.cfg.StorageToken {
		// there is no swap to sponsor
		return types.FeeTierUnsponsored, nil
	}

	var sponsored bool
	err := s.retry(ctx, nil, uploadcheckpoints.FeeCollecting, s.transientPolicy(s.cfg.QuoteMaxAttempts), func(ctx context.Context, _ int) error {
		ok, err := s.clients.Sponsorship.GasSponsored(ctx, types.SponsorshipQuery{
			InputToken:  s.cfg.BridgedToken,
			OutputToken: s.cfg.StorageToken,
			Amount:      st.Quote.TotalCost,
			Sender:      st.Receiver,
		})
		if errors.Is(err, types.ErrRouteUnavailable) {
			return nil
		}
		sponsored = ok
		return err
	})
	if err != nil {
		return types.FeeTierUnknown, fmt.Errorf("checking gas sponsorship: %w", err)
	}
	if sponsored {
		return types.FeeTierSponsored, nil
	}
	return types.FeeTierUnsponsored, nil
}

func (s *Saga) feePercent(tier types.FeeTier) decimal.Decimal {
	if tier == types.FeeTierSponsored {
		return s.cfg.SponsoredFeePercent
	}
	return s.cfg.UnsponsoredFeePercent
}
