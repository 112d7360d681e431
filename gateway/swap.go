package gateway

import (
	"context"
	"fmt"

	"github.com/jhuhnke/solana-walrus/api"
	"github.com/jhuhnke/solana-walrus/saga/types"
)

// SwapRouter converts the bridged asset into the storage token through the
// gateway's aggregator routes.
type SwapRouter struct {
	g *Gateway
}

var _ types.SwapRouter = (*SwapRouter)(nil)
var _ types.SponsorshipChecker = (*SwapRouter)(nil)

func (s *SwapRouter) GasSponsored(ctx context.Context, q types.SponsorshipQuery) (bool, error) {
	ok, err := s.g.api.SwapSponsoredRoute(ctx, api.SwapRequest{
		InputToken:  q.InputToken,
		OutputToken: q.OutputToken,
		Amount:      q.Amount,
		Sender:      q.Sender,
		Sponsored:   true,
	})
	return ok, mapErr(err)
}

func (s *SwapRouter) Swap(ctx context.Context, p types.SwapParams, signer types.Signer) (*types.SwapOutcome, error) {
	switch p.Strategy {
	case types.SwapSponsored, types.SwapDirect:
	default:
		return nil, fmt.Errorf("unknown swap strategy %q", p.Strategy)
	}

	tx, err := s.g.api.SwapBuild(ctx, api.SwapRequest{
		InputToken:  p.InputToken,
		OutputToken: p.OutputToken,
		Amount:      p.Amount,
		Sender:      p.Sender,
		SlippageBps: p.SlippageBps,
		Sponsored:   p.Strategy == types.SwapSponsored,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	r, err := s.g.execute(ctx, tx, signer)
	if err != nil {
		return nil, err
	}
	if err := r.Result().Check(); err != nil {
		return nil, err
	}

	out, ok := r.BalanceChanges[p.OutputToken]
	if !ok || out == 0 {
		return nil, fmt.Errorf("%w: swap tx %s credited no %s", types.ErrTxFailed, r.TxID, p.OutputToken)
	}
	return &types.SwapOutcome{
		InputAmount:  p.Amount,
		OutputAmount: out,
		Sponsored:    p.Strategy == types.SwapSponsored,
		TxID:         r.TxID,
	}, nil
}
