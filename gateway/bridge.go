package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhuhnke/solana-walrus/api"
	"github.com/jhuhnke/solana-walrus/saga/types"
)

// Bridge moves the remaining amount from the source ledger to the
// destination ledger.
type Bridge struct {
	g *Gateway
}

var _ types.Bridge = (*Bridge)(nil)

func (b *Bridge) Initiate(ctx context.Context, p types.InitiateParams, signer types.Signer) (*types.BridgeTransferHandle, error) {
	tx, err := b.g.api.BridgeBuildTransfer(ctx, api.BridgeTransferRequest{
		Amount:             p.Amount.Amount(),
		SourceAddress:      p.SourceAddress,
		DestinationAddress: p.DestinationAddress,
		Memo:               p.Memo,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	signed, err := signer.Sign(ctx, signingRequest(tx))
	if err != nil {
		return nil, fmt.Errorf("signing bridge transfer: %w", err)
	}
	t, err := b.g.api.BridgeSubmit(ctx, signed)
	if err != nil {
		return nil, mapErr(err)
	}
	if t == nil {
		return nil, errors.New("gateway returned no bridge transfer")
	}
	return &types.BridgeTransferHandle{
		Phase:              types.BridgeInitiated,
		Amount:             p.Amount.Amount(),
		SourceAddress:      p.SourceAddress,
		DestinationAddress: p.DestinationAddress,
		SourceTxID:         t.SourceTxID,
		BridgeTxID:         t.Sequence,
	}, nil
}

func (b *Bridge) LookupTransfer(ctx context.Context, sourceAddress string, memo string) (*types.BridgeTransferHandle, error) {
	t, err := b.g.api.BridgeFindTransfer(ctx, sourceAddress, memo)
	if err != nil {
		return nil, mapErr(err)
	}
	if t == nil {
		return nil, nil
	}
	return &types.BridgeTransferHandle{
		Phase:         types.BridgeInitiated,
		SourceAddress: sourceAddress,
		SourceTxID:    t.SourceTxID,
		BridgeTxID:    t.Sequence,
	}, nil
}

// AwaitAttestation polls the bridge until the guardians have signed the
// transfer. It only returns early on a non-transient error or when ctx is
// done.
func (b *Bridge) AwaitAttestation(ctx context.Context, h types.BridgeTransferHandle) (*types.BridgeTransferHandle, error) {
	ticker := b.g.clock.Ticker(b.g.cfg.AttestationPollInterval)
	defer ticker.Stop()

	for {
		a, err := b.g.api.BridgeAttestation(ctx, h.SourceTxID)
		err = mapErr(err)
		switch {
		case err == nil && a != nil && len(a.VAA) > 0:
			out := h
			out.Attestation = a.VAA
			if a.Sequence != "" {
				out.BridgeTxID = a.Sequence
			}
			return &out, nil
		case err != nil && !errors.Is(err, types.ErrTransient):
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("fetching attestation of %s: %w", h.SourceTxID, err)
		case err != nil:
			log.Warnw("attestation poll failed", "tx", h.SourceTxID, "err", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Claim redeems the attestation on the destination ledger. A failed claim
// transaction is returned as an error carrying the ledger's message, which
// the saga classifies.
func (b *Bridge) Claim(ctx context.Context, h types.BridgeTransferHandle, signer types.Signer) (*types.ClaimResult, error) {
	if len(h.Attestation) == 0 {
		return nil, fmt.Errorf("bridge transfer %s has no attestation", h.SourceTxID)
	}
	tx, err := b.g.api.BridgeBuildClaim(ctx, api.ClaimRequest{
		VAA:      h.Attestation,
		Receiver: signer.Address(),
	})
	if err != nil {
		return nil, mapErr(err)
	}
	r, err := b.g.execute(ctx, tx, signer)
	if err != nil {
		return nil, err
	}
	if err := r.Result().Check(); err != nil {
		return nil, err
	}

	claimed, ok := r.BalanceChanges[b.g.cfg.BridgedToken]
	if !ok || claimed == 0 {
		// nothing to read the amount from, assume the full amount arrived
		log.Warnw("claim receipt has no balance change for the bridged token", "tx", r.TxID, "token", b.g.cfg.BridgedToken)
		claimed = h.Amount
	}
	return &types.ClaimResult{DestinationTxID: r.TxID, Amount: claimed}, nil
}
