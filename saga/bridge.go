package saga

import (
	"context"
	"errors"
	"fmt"

	"go.opencensus.io/stats"

	"github.com/jhuhnke/solana-walrus/db"
	"github.com/jhuhnke/solana-walrus/metrics"
	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

// initiateBridge sends the amount left after the fee to the bridge. The
// transfer is resubmitted only while it is known not to have been accepted
// by the source ledger.
func (s *Saga) initiateBridge(ctx context.Context, st *types.UploadState) error {
	amount := st.Fee.RemainingForBridge()
	if amount.Amount() == 0 {
		return errors.New("nothing left to bridge after the fee")
	}
	key := st.IdempotencyKey(uploadcheckpoints.BridgeInitiating)

	signer, err := s.clients.Signers.SourceSigner(st.Payer)
	if err != nil {
		return fmt.Errorf("getting signer for payer %s: %w", st.Payer, err)
	}

	unlock, err := s.payers.lock(ctx, st.Payer)
	if err != nil {
		return err
	}
	defer unlock()

	// A previous run may have submitted the transfer already
	entry, err := s.bridgeDB.ByKey(ctx, key)
	switch {
	case errors.Is(err, db.ErrNotFound):
	case err != nil:
		return fmt.Errorf("looking up bridge ledger: %w", err)
	default:
		h, err := s.clients.Bridge.LookupTransfer(ctx, st.Payer, key)
		if err != nil {
			return fmt.Errorf("reconciling bridge transfer %s: %w", key, err)
		}
		if h != nil {
			s.uploadLogger.Infow(st.ID, "found bridge transfer from previous run", "tx", h.SourceTxID)
			return s.bridgeInitiated(ctx, st, key, amount, h)
		}
		if entry.Status == db.LedgerConfirmed {
			return fmt.Errorf("bridge ledger has confirmed transfer %s but the bridge does not know it", entry.SourceTxID)
		}
		if err := s.bridgeDB.Delete(ctx, key); err != nil {
			return fmt.Errorf("removing stale bridge ledger entry: %w", err)
		}
	}

	err = s.bridgeDB.InsertPending(ctx, &db.BridgeEntry{
		IdempotencyKey:     key,
		UploadID:           st.ID,
		SourceAddress:      st.Payer,
		DestinationAddress: st.Receiver,
		Amount:             amount.Amount(),
	})
	if err != nil {
		return fmt.Errorf("recording pending bridge transfer: %w", err)
	}

	policy := s.transientPolicy(s.cfg.InitiateMaxAttempts)
	policy.Retryable = func(err error) bool {
		return errors.Is(err, types.ErrNotAccepted) || errors.Is(err, types.ErrTransient)
	}

	var handle *types.BridgeTransferHandle
	err = s.retry(ctx, st, uploadcheckpoints.BridgeInitiating, policy, func(ctx context.Context, attempt int) error {
		h, err := s.clients.Bridge.Initiate(ctx, types.InitiateParams{
			Amount:             amount,
			SourceAddress:      st.Payer,
			DestinationAddress: st.Receiver,
			Memo:               key,
		}, signer)
		if err == nil {
			handle = h
			return nil
		}
		if errors.Is(err, types.ErrNotAccepted) || !errors.Is(err, types.ErrTransient) {
			return err
		}

		// The outcome of the submission is unknown: only resubmit if the
		// source ledger has no trace of it
		found, lerr := s.clients.Bridge.LookupTransfer(ctx, st.Payer, key)
		if lerr != nil {
			return fmt.Errorf("bridge transfer outcome unknown (%s) and lookup failed: %s", err, lerr)
		}
		if found != nil {
			handle = found
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	return s.bridgeInitiated(ctx, st, key, amount, handle)
}

func (s *Saga) bridgeInitiated(ctx context.Context, st *types.UploadState, key string, amount types.BridgeAmount, h *types.BridgeTransferHandle) error {
	if h == nil {
		return errors.New("bridge returned no transfer handle")
	}
	next := *h
	next.Phase = types.BridgeInitiated
	next.Amount = amount.Amount()
	next.SourceAddress = st.Payer
	next.DestinationAddress = st.Receiver
	if err := (types.BridgeTransferHandle{}).Advance(next); err != nil {
		return err
	}

	if err := s.bridgeDB.Confirm(ctx, key, next.SourceTxID); err != nil {
		return err
	}
	st.Bridge = next

	s.uploadLogger.Infow(st.ID, "bridge transfer initiated", "amount", amount, "tx", next.SourceTxID, "bridge tx", next.BridgeTxID)
	stats.Record(s.ctx, metrics.AmountBridged.M(amount.Amount().Decimal().InexactFloat64()))
	return nil
}

// awaitAttestation blocks until the bridge attests the transfer, or until
// the attestation timeout expires.
func (s *Saga) awaitAttestation(ctx context.Context, st *types.UploadState) error {
	actx, cancel := s.clock.WithTimeout(ctx, s.cfg.AttestationTimeout)
	defer cancel()

	st.Attempts[string(uploadcheckpoints.BridgeAttesting)]++
	start := s.clock.Now()
	h, err := s.clients.Bridge.AwaitAttestation(actx, st.Bridge)
	s.recordAttempt(ctx, uploadcheckpoints.BridgeAttesting, start, err)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(actx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s (bridge tx %s)", types.ErrAttestationTimeout, s.cfg.AttestationTimeout, st.Bridge.SourceTxID)
		}
		return err
	}
	if h == nil {
		return errors.New("bridge returned no transfer handle")
	}

	next := st.Bridge
	next.Phase = types.BridgeAttested
	next.Attestation = h.Attestation
	if h.BridgeTxID != "" {
		next.BridgeTxID = h.BridgeTxID
	}
	if err := st.Bridge.Advance(next); err != nil {
		return err
	}
	st.Bridge = next

	s.uploadLogger.Infow(st.ID, "bridge transfer attested", "bridge tx", next.BridgeTxID)
	return nil
}

// claimBridge redeems the attested transfer on the destination ledger.
// Only failures on the claim allow-list are retried, after a fixed delay.
func (s *Saga) claimBridge(ctx context.Context, st *types.UploadState) error {
	signer, err := s.clients.Signers.DestinationSigner(st.Payer, st.Receiver)
	if err != nil {
		return fmt.Errorf("getting signer for receiver %s: %w", st.Receiver, err)
	}

	policy := RetryPolicy{
		MaxAttempts: s.cfg.ClaimMaxAttempts,
		Delay:       FixedDelay(s.cfg.ClaimRetryDelay),
		Retryable:   IsTransientClaimError,
	}

	var res *types.ClaimResult
	err = s.retry(ctx, st, uploadcheckpoints.BridgeClaiming, policy, func(ctx context.Context, attempt int) error {
		r, err := s.clients.Bridge.Claim(ctx, st.Bridge, signer)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return err
	}
	if res == nil || res.Amount == 0 {
		return errors.New("claim credited nothing to the receiver")
	}

	next := st.Bridge
	next.Phase = types.BridgeClaimed
	next.DestinationTxID = res.DestinationTxID
	next.ClaimedAmount = res.Amount
	if err := st.Bridge.Advance(next); err != nil {
		return err
	}
	st.Bridge = next

	s.uploadLogger.Infow(st.ID, "bridge transfer claimed", "tx", next.DestinationTxID, "claimed", next.ClaimedAmount,
		"attempts", st.Attempts[string(uploadcheckpoints.BridgeClaiming)])
	return nil
}
