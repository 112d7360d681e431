package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhuhnke/solana-walrus/saga/types"
)

func TestFeeLedgerDB(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	sqldb := CreateTestTmpDB(t)
	req.NoError(CreateAllTables(ctx, sqldb))

	ledger := NewFeeLedgerDB(sqldb)
	uploads, err := GenerateNUploads(2)
	req.NoError(err)

	pct, err := types.ParseFeePercent("0.01")
	req.NoError(err)
	requested := types.MustParseAmount("10")
	out, err := types.SplitFee(requested, pct)
	req.NoError(err)

	entry := &FeeEntry{
		IdempotencyKey:  "key-1",
		UploadID:        uploads[0].ID,
		Payer:           uploads[0].Payer,
		Treasury:        "treasury",
		AmountRequested: requested,
		FeePercent:      pct,
		AmountDebited:   out.AmountDebited(),
	}
	req.NoError(ledger.InsertPending(ctx, entry))

	// the same key cannot be recorded twice
	req.Error(ledger.InsertPending(ctx, &FeeEntry{IdempotencyKey: "key-1", UploadID: uploads[0].ID, FeePercent: pct}))

	stored, err := ledger.ByKey(ctx, "key-1")
	req.NoError(err)
	req.Equal(LedgerPending, stored.Status)
	req.True(pct.Equal(stored.FeePercent))
	req.Equal(types.MustParseAmount("0.1"), stored.AmountDebited)

	req.NoError(ledger.Confirm(ctx, "key-1", "fee-tx"))
	stored, err = ledger.ByKey(ctx, "key-1")
	req.NoError(err)
	req.Equal(LedgerConfirmed, stored.Status)
	req.Equal("fee-tx", stored.SourceTxID)

	rebuilt, err := stored.Outcome()
	req.NoError(err)
	req.Equal(types.MustParseAmount("9.9"), rebuilt.RemainingForBridge().Amount())
	req.Equal("fee-tx", rebuilt.SourceTxID)

	// confirmed entries are never deleted
	req.NoError(ledger.Delete(ctx, "key-1"))
	_, err = ledger.ByKey(ctx, "key-1")
	req.NoError(err)

	req.NoError(ledger.InsertPending(ctx, &FeeEntry{
		IdempotencyKey:  "key-2",
		UploadID:        uploads[1].ID,
		AmountRequested: requested,
		FeePercent:      pct,
		AmountDebited:   out.AmountDebited(),
	}))
	total, err := ledger.TotalCollected(ctx)
	req.NoError(err)
	req.Equal(types.MustParseAmount("0.1"), total)

	req.NoError(ledger.Delete(ctx, "key-2"))
	_, err = ledger.ByKey(ctx, "key-2")
	req.ErrorIs(err, ErrNotFound)

	req.ErrorIs(ledger.Confirm(ctx, "key-3", "tx"), ErrNotFound)
}

func TestFeeEntryOutcomeRejectsTampering(t *testing.T) {
	pct, err := types.ParseFeePercent("0.02")
	require.NoError(t, err)
	e := &FeeEntry{
		IdempotencyKey:  "k",
		AmountRequested: types.MustParseAmount("10"),
		FeePercent:      pct,
		AmountDebited:   types.MustParseAmount("0.1"),
	}
	_, err = e.Outcome()
	require.Error(t, err)
}
