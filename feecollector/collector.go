package feecollector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/jpillora/backoff"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/jhuhnke/solana-walrus/db"
	"github.com/jhuhnke/solana-walrus/saga/types"
)

var log = logging.Logger("fees")

type Config struct {
	// Treasury is the source ledger address that receives the protocol fee
	Treasury      string
	MaxAttempts   int
	BackoffMin    time.Duration
	BackoffMax    time.Duration
	BackoffFactor float64
}

// Collector debits the protocol fee from a payer to the treasury, exactly
// once per idempotency key.
type Collector struct {
	cfg    Config
	ledger types.SourceLedger
	feeDB  *db.FeeLedgerDB
	clock  clock.Clock
}

func New(cfg Config, ledger types.SourceLedger, feeDB *db.FeeLedgerDB, clk clock.Clock) *Collector {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Collector{cfg: cfg, ledger: ledger, feeDB: feeDB, clock: clk}
}

type CollectParams struct {
	UploadID   cid.Cid
	Payer      string
	Signer     types.Signer
	Amount     types.Amount
	FeePercent decimal.Decimal
	// IdempotencyKey identifies the collection both in the fee ledger and as
	// the memo of the transfer on the source ledger
	IdempotencyKey string
}

// Collect debits floor(Amount * FeePercent) to the treasury and returns the
// outcome. Calling Collect again with the same idempotency key returns the
// outcome of the first collection without debiting the payer again.
func (c *Collector) Collect(ctx context.Context, p CollectParams) (types.FeeOutcome, error) {
	out, err := types.SplitFee(p.Amount, p.FeePercent)
	if err != nil {
		return types.FeeOutcome{}, fmt.Errorf("%w: %s", types.ErrValidation, err)
	}
	if p.IdempotencyKey == "" {
		return types.FeeOutcome{}, fmt.Errorf("%w: missing fee idempotency key", types.ErrValidation)
	}

	// Check if a collection was already made under this key
	prev, err := c.Settled(ctx, p.IdempotencyKey, p.Payer)
	if err != nil {
		return types.FeeOutcome{}, err
	}
	if prev != nil {
		if prev.AmountRequested() != p.Amount || !prev.FeePercent().Equal(p.FeePercent) {
			log.Warnw("fee was collected for a different amount", "id", p.UploadID, "key", p.IdempotencyKey,
				"collected for", prev.AmountRequested(), "at", prev.FeePercent(), "requested", p.Amount, "at", p.FeePercent)
		}
		return *prev, nil
	}

	if out.AmountDebited() == 0 {
		// nothing to transfer, record the collection so it is not repeated
		if err := c.insertPending(ctx, p, out); err != nil {
			return types.FeeOutcome{}, err
		}
		if err := c.feeDB.Confirm(ctx, p.IdempotencyKey, ""); err != nil {
			return types.FeeOutcome{}, err
		}
		return out, nil
	}

	bal, err := c.ledger.Balance(ctx, p.Payer)
	if err != nil {
		return types.FeeOutcome{}, fmt.Errorf("getting balance of %s: %w", p.Payer, err)
	}
	if bal < p.Amount {
		return types.FeeOutcome{}, fmt.Errorf("%w: payer %s has %s, upload requires %s",
			types.ErrInsufficientFunds, p.Payer, bal, p.Amount)
	}

	if err := c.insertPending(ctx, p, out); err != nil {
		return types.FeeOutcome{}, err
	}

	txID, err := c.submit(ctx, p, out)
	if err != nil {
		return types.FeeOutcome{}, err
	}
	out.SourceTxID = txID
	return out, nil
}

func (c *Collector) insertPending(ctx context.Context, p CollectParams, out types.FeeOutcome) error {
	err := c.feeDB.InsertPending(ctx, &db.FeeEntry{
		IdempotencyKey:  p.IdempotencyKey,
		UploadID:        p.UploadID,
		Payer:           p.Payer,
		Treasury:        c.cfg.Treasury,
		AmountRequested: p.Amount,
		FeePercent:      p.FeePercent,
		AmountDebited:   out.AmountDebited(),
	})
	if err != nil {
		return fmt.Errorf("recording pending fee collection: %w", err)
	}
	return nil
}

// Settled returns the outcome of the collection recorded under key, or nil
// if no fee was collected under it. A pending collection is reconciled
// against the source ledger with the amounts it was recorded with: if the
// transfer landed it is confirmed, otherwise the entry is removed so that
// the fee can be collected again, at a new amount if need be.
func (c *Collector) Settled(ctx context.Context, key string, payer string) (*types.FeeOutcome, error) {
	entry, err := c.feeDB.ByKey(ctx, key)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("looking up fee ledger: %w", err)
	}

	if entry.Status == db.LedgerConfirmed {
		log.Infow("fee already collected", "id", entry.UploadID, "key", key, "tx", entry.SourceTxID)
		out, err := entry.Outcome()
		if err != nil {
			return nil, err
		}
		return &out, nil
	}

	// The previous submission may or may not have landed
	rec, err := c.reconcile(ctx, entry.UploadID, payer, key, entry.AmountDebited)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		entry.SourceTxID = rec.TxID
		out, err := entry.Outcome()
		if err != nil {
			return nil, err
		}
		return &out, nil
	}
	if err := c.feeDB.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("removing stale fee ledger entry: %w", err)
	}
	return nil, nil
}

// reconcile looks for a transfer carrying the idempotency key on the source
// ledger, and confirms the ledger entry if one is found.
func (c *Collector) reconcile(ctx context.Context, id cid.Cid, payer string, key string, debited types.Amount) (*types.TransferRecord, error) {
	rec, err := c.ledger.LookupTransfer(ctx, payer, key)
	if err != nil {
		return nil, fmt.Errorf("reconciling fee transfer %s: %w", key, err)
	}
	if rec == nil {
		return nil, nil
	}
	if rec.Amount != debited {
		return nil, fmt.Errorf("fee transfer %s moved %s, expected %s", rec.TxID, rec.Amount, debited)
	}
	log.Infow("found fee transfer on ledger", "id", id, "key", key, "tx", rec.TxID)
	if err := c.feeDB.Confirm(ctx, key, rec.TxID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Collector) submit(ctx context.Context, p CollectParams, out types.FeeOutcome) (string, error) {
	b := &backoff.Backoff{
		Min:    c.cfg.BackoffMin,
		Max:    c.cfg.BackoffMax,
		Factor: c.cfg.BackoffFactor,
	}

	for {
		// b.Attempt() starts from zero
		nAttempts := int(b.Attempt()) + 1
		if nAttempts > 1 {
			// a previous attempt that timed out may still have landed
			rec, err := c.reconcile(ctx, p.UploadID, p.Payer, p.IdempotencyKey, out.AmountDebited())
			if err != nil {
				return "", err
			}
			if rec != nil {
				return rec.TxID, nil
			}
		}

		txID, err := c.transfer(ctx, p, out)
		if err == nil {
			if err := c.feeDB.Confirm(ctx, p.IdempotencyKey, txID); err != nil {
				return "", err
			}
			log.Infow("fee collected", "id", p.UploadID, "amount", out.AmountDebited(), "tx", txID, "attempt", nAttempts)
			return txID, nil
		}

		if !errors.Is(err, types.ErrTransient) {
			return "", err
		}
		if nAttempts >= c.cfg.MaxAttempts {
			return "", xerrors.Errorf("exhausted %d attempts collecting fee %s: %w", c.cfg.MaxAttempts, p.IdempotencyKey, err)
		}

		d := b.Duration()
		log.Warnw("fee transfer failed, retrying", "id", p.UploadID, "attempt", nAttempts, "wait", d, "err", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-c.clock.After(d):
		}
	}
}

func (c *Collector) transfer(ctx context.Context, p CollectParams, out types.FeeOutcome) (string, error) {
	req, err := c.ledger.BuildTransfer(ctx, types.TransferParams{
		From:   p.Payer,
		To:     c.cfg.Treasury,
		Amount: out.AmountDebited(),
		Memo:   p.IdempotencyKey,
	})
	if err != nil {
		return "", fmt.Errorf("building fee transfer: %w", err)
	}
	signed, err := p.Signer.Sign(ctx, req)
	if err != nil {
		return "", fmt.Errorf("signing fee transfer: %w", err)
	}
	txID, err := c.ledger.SubmitAndConfirm(ctx, signed)
	if err != nil {
		return "", fmt.Errorf("submitting fee transfer: %w", err)
	}
	return txID, nil
}
