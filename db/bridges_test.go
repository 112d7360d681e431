package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBridgeLedgerDB(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	sqldb := CreateTestTmpDB(t)
	req.NoError(CreateAllTables(ctx, sqldb))

	ledger := NewBridgeLedgerDB(sqldb)
	uploads, err := GenerateNUploads(1)
	req.NoError(err)
	upload := uploads[0]

	entry := &BridgeEntry{
		IdempotencyKey:     "bridge-key",
		UploadID:           upload.ID,
		SourceAddress:      upload.Payer,
		DestinationAddress: upload.Receiver,
		Amount:             upload.Fee.RemainingForBridge().Amount(),
	}
	req.NoError(ledger.InsertPending(ctx, entry))

	stored, err := ledger.ByKey(ctx, "bridge-key")
	req.NoError(err)
	req.Equal(LedgerPending, stored.Status)
	req.Equal(upload.ID, stored.UploadID)
	req.Equal(entry.Amount, stored.Amount)
	req.Empty(stored.SourceTxID)

	req.NoError(ledger.Confirm(ctx, "bridge-key", "src-tx"))
	stored, err = ledger.ByKey(ctx, "bridge-key")
	req.NoError(err)
	req.Equal(LedgerConfirmed, stored.Status)
	req.Equal("src-tx", stored.SourceTxID)

	_, err = ledger.ByKey(ctx, "other")
	req.ErrorIs(err, ErrNotFound)
}
