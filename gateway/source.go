package gateway

import (
	"context"

	"github.com/jhuhnke/solana-walrus/api"
	"github.com/jhuhnke/solana-walrus/saga/types"
)

// SourceLedger pays the protocol fee on the source ledger.
type SourceLedger struct {
	g *Gateway
}

var _ types.SourceLedger = (*SourceLedger)(nil)

func (s *SourceLedger) Balance(ctx context.Context, address string) (types.Amount, error) {
	b, err := s.g.api.SourceBalance(ctx, address)
	return b, mapErr(err)
}

func (s *SourceLedger) BuildTransfer(ctx context.Context, p types.TransferParams) (types.SigningRequest, error) {
	tx, err := s.g.api.SourceBuildTransfer(ctx, api.TransferRequest{
		From:   p.From,
		To:     p.To,
		Amount: p.Amount,
		Memo:   p.Memo,
	})
	if err != nil {
		return types.SigningRequest{}, mapErr(err)
	}
	return signingRequest(tx), nil
}

func (s *SourceLedger) SubmitAndConfirm(ctx context.Context, signed []byte) (string, error) {
	id, err := s.g.api.SourceSubmit(ctx, signed)
	return id, mapErr(err)
}

func (s *SourceLedger) LookupTransfer(ctx context.Context, from string, memo string) (*types.TransferRecord, error) {
	r, err := s.g.api.SourceFindTransfer(ctx, from, memo)
	return r, mapErr(err)
}
