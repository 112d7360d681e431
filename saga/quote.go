package saga

import (
	"context"
	"errors"
	"fmt"

	"github.com/jellydator/ttlcache/v2"

	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

// Quote returns the cost of storing sizeBytes for the given number of
// epochs, including the allowance for the destination ledger transactions.
// Quotes are cached for a short time.
func (s *Saga) Quote(ctx context.Context, sizeBytes uint64, epochs uint32) (*types.QuoteResult, error) {
	return s.quote(ctx, nil, sizeBytes, epochs)
}

func (s *Saga) quoteUpload(ctx context.Context, st *types.UploadState) error {
	q, err := s.quote(ctx, st, st.FileSizeBytes, st.Epochs)
	if err != nil {
		return err
	}
	st.Quote = *q
	s.uploadLogger.Infow(st.ID, "quoted storage cost", "storage", q.StorageCost, "write", q.WriteCost,
		"total", q.TotalCost, "encoded size", q.EncodedSizeBytes)
	return nil
}

func (s *Saga) quote(ctx context.Context, st *types.UploadState, sizeBytes uint64, epochs uint32) (*types.QuoteResult, error) {
	if sizeBytes == 0 || epochs == 0 {
		return nil, fmt.Errorf("%w: size and epochs must be greater than zero", types.ErrValidation)
	}

	key := fmt.Sprintf("%d/%d", sizeBytes, epochs)
	if s.quotes != nil {
		v, err := s.quotes.Get(key)
		if err == nil {
			q := v.(types.QuoteResult)
			return &q, nil
		}
		if !errors.Is(err, ttlcache.ErrNotFound) {
			log.Warnw("reading quote cache", "key", key, "err", err)
		}
	}

	var cost *types.StorageCost
	err := s.retry(ctx, st, uploadcheckpoints.Quoting, s.transientPolicy(s.cfg.QuoteMaxAttempts), func(ctx context.Context, _ int) error {
		c, err := s.clients.Quoter.StorageCost(ctx, sizeBytes, epochs)
		if err != nil {
			return err
		}
		if c == nil {
			return errors.New("pricing oracle returned no cost")
		}
		cost = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := cost.StorageCost + cost.WriteCost
	if total < cost.StorageCost || total+s.cfg.TxCostAllowance < total {
		return nil, fmt.Errorf("storage cost %s + %s overflows", cost.StorageCost, cost.WriteCost)
	}
	total += s.cfg.TxCostAllowance
	if total == 0 {
		return nil, errors.New("pricing oracle returned a zero cost")
	}

	q := types.QuoteResult{
		StorageCost:      cost.StorageCost,
		WriteCost:        cost.WriteCost,
		TotalCost:        total,
		EncodedSizeBytes: cost.EncodedSizeBytes,
		Epochs:           epochs,
	}
	if s.quotes != nil {
		if err := s.quotes.Set(key, q); err != nil {
			log.Warnw("writing quote cache", "key", key, "err", err)
		}
	}
	return &q, nil
}
