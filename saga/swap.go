package saga

import (
	"context"
	"errors"
	"fmt"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/jhuhnke/solana-walrus/metrics"
	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

// swap converts the claimed amount into the storage token. A sponsored
// route is tried once if the upload is in the sponsored tier, then a single
// direct swap is made with the same amount.
func (s *Saga) swap(ctx context.Context, st *types.UploadState) error {
	claimed := st.Bridge.ClaimedAmount

	if s.cfg.BridgedToken == s.cfg.StorageToken {
		st.Swap = types.SwapOutcome{InputAmount: claimed, OutputAmount: claimed, Skipped: true}
		s.uploadLogger.Infow(st.ID, "bridged token is the storage token, skipping swap", "amount", claimed)
		return nil
	}

	signer, err := s.clients.Signers.DestinationSigner(st.Payer, st.Receiver)
	if err != nil {
		return fmt.Errorf("getting signer for receiver %s: %w", st.Receiver, err)
	}

	params := types.SwapParams{
		InputToken:  s.cfg.BridgedToken,
		OutputToken: s.cfg.StorageToken,
		Amount:      claimed,
		Sender:      st.Receiver,
		SlippageBps: s.cfg.SlippageBps,
	}

	if st.FeeTier == types.FeeTierSponsored && s.cfg.PreferSponsored {
		params.Strategy = types.SwapSponsored
		out, err := s.swapOnce(ctx, st, params, signer)
		if err == nil {
			return s.swapped(st, params, out)
		}
		if errors.Is(err, types.ErrUnauthorized) || ctx.Err() != nil {
			return err
		}
		s.uploadLogger.Warnw(st.ID, "sponsored swap failed, falling back to direct swap", "amount", claimed, "err", err)
		stats.Record(s.ctx, metrics.SwapFallbacks.M(1))
	}

	params.Strategy = types.SwapDirect
	out, err := s.swapOnce(ctx, st, params, signer)
	if err != nil {
		return err
	}
	return s.swapped(st, params, out)
}

func (s *Saga) swapOnce(ctx context.Context, st *types.UploadState, params types.SwapParams, signer types.Signer) (*types.SwapOutcome, error) {
	st.Attempts[string(uploadcheckpoints.Swapping)]++
	start := s.clock.Now()
	tctx, _ := tag.New(ctx, tag.Upsert(metrics.Swap, string(params.Strategy)))
	out, err := s.clients.Swap.Swap(ctx, params, signer)
	s.recordAttempt(tctx, uploadcheckpoints.Swapping, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s swap: %w", params.Strategy, err)
	}
	if out == nil || out.OutputAmount == 0 {
		return nil, fmt.Errorf("%s swap produced nothing", params.Strategy)
	}
	return out, nil
}

func (s *Saga) swapped(st *types.UploadState, params types.SwapParams, out *types.SwapOutcome) error {
	res := *out
	res.InputAmount = params.Amount
	res.Sponsored = params.Strategy == types.SwapSponsored
	res.Skipped = false
	st.Swap = res

	s.uploadLogger.Infow(st.ID, "swapped bridged funds", "strategy", params.Strategy, "in", res.InputAmount,
		"out", res.OutputAmount, "tx", res.TxID)
	return nil
}
