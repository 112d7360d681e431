package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

func TestUploadsDB(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	sqldb := CreateTestTmpDB(t)
	req.NoError(CreateAllTables(ctx, sqldb))

	db := NewUploadsDB(sqldb)
	uploads, err := GenerateUploads()
	req.NoError(err)

	for i := range uploads {
		req.NoError(db.Insert(ctx, &uploads[i]))
	}

	upload := uploads[0]
	stored, err := db.ByID(ctx, upload.ID)
	req.NoError(err)
	req.Equal(upload.ID, stored.ID)
	req.True(upload.CreatedAt.Equal(stored.CreatedAt))
	req.Equal(upload.FilePath, stored.FilePath)
	req.Equal(upload.FileHash, stored.FileHash)
	req.Equal(upload.FileSizeBytes, stored.FileSizeBytes)
	req.Equal(upload.Epochs, stored.Epochs)
	req.Equal(upload.Deletable, stored.Deletable)
	req.Equal(upload.Payer, stored.Payer)
	req.Equal(upload.Receiver, stored.Receiver)
	req.Equal(upload.FeeTier, stored.FeeTier)
	req.Equal(upload.Quote, stored.Quote)
	req.Equal(upload.Fee.AmountDebited(), stored.Fee.AmountDebited())
	req.Equal(upload.Fee.RemainingForBridge(), stored.Fee.RemainingForBridge())
	req.Equal(upload.Fee.SourceTxID, stored.Fee.SourceTxID)
	req.Equal(uploadcheckpoints.FeeCollected, stored.Checkpoint)
	req.Equal(uploadcheckpoints.BridgeInitiating, stored.State)
	req.Equal(types.UploadRetryAuto, stored.Retry)
	req.Equal(1, stored.Attempts[string(uploadcheckpoints.FeeCollecting)])

	// the request rebuilt from the record has the same digest
	rebuilt, err := stored.Request()
	req.NoError(err)
	req.Equal(upload.ID, rebuilt.Digest())

	missing, err := GenerateNUploads(1)
	req.NoError(err)
	_, err = db.ByID(ctx, missing[0].ID)
	req.ErrorIs(err, ErrNotFound)
}

func TestUploadsDBUpdate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	sqldb := CreateTestTmpDB(t)
	req.NoError(CreateAllTables(ctx, sqldb))

	db := NewUploadsDB(sqldb)
	uploads, err := GenerateNUploads(1)
	req.NoError(err)
	upload := &uploads[0]
	req.NoError(db.Insert(ctx, upload))

	upload.Bridge = types.BridgeTransferHandle{
		Phase:              types.BridgeAttested,
		Amount:             upload.Fee.RemainingForBridge().Amount(),
		SourceAddress:      upload.Payer,
		DestinationAddress: upload.Receiver,
		SourceTxID:         "src-tx",
		BridgeTxID:         "vaa-seq-12",
		Attestation:        []byte{1, 2, 3},
	}
	upload.Confirmations = []types.Confirmation{{NodeID: "node-1", Signature: []byte{9}}}
	upload.Blob = types.FinalizedBlob{BlobID: "blob", BlobObjectID: "0xobj", RegistrationTxID: "reg-tx"}
	upload.Checkpoint = uploadcheckpoints.BlobStored
	upload.CheckpointAt = time.Now()
	upload.State = upload.Checkpoint.Next()
	upload.Attempts[string(uploadcheckpoints.BridgeClaiming)] = 3
	req.NoError(db.Update(ctx, upload))

	stored, err := db.ByID(ctx, upload.ID)
	req.NoError(err)
	req.Equal(upload.Bridge, stored.Bridge)
	req.Equal(upload.Confirmations, stored.Confirmations)
	req.Equal(upload.Blob, stored.Blob)
	req.Equal(uploadcheckpoints.BlobStored, stored.Checkpoint)
	req.Equal(3, stored.Attempts[string(uploadcheckpoints.BridgeClaiming)])

	byObj, err := db.ByBlobObjectID(ctx, "0xobj")
	req.NoError(err)
	req.Equal(upload.ID, byObj.ID)

	// updating a row that does not exist fails
	other, err := GenerateNUploads(1)
	req.NoError(err)
	req.ErrorIs(db.Update(ctx, &other[0]), ErrNotFound)
}

func TestUploadsDBList(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	sqldb := CreateTestTmpDB(t)
	req.NoError(CreateAllTables(ctx, sqldb))

	db := NewUploadsDB(sqldb)
	uploads, err := GenerateNUploads(4)
	req.NoError(err)

	uploads[1].Checkpoint = uploadcheckpoints.Complete
	uploads[1].State = uploadcheckpoints.Done
	uploads[2].Err = "attestation timed out"
	uploads[2].Retry = types.UploadRetryManual
	for i := range uploads {
		req.NoError(db.Insert(ctx, &uploads[i]))
	}

	active, err := db.ListActive(ctx)
	req.NoError(err)
	req.Len(active, 2)

	completed, err := db.ListCompleted(ctx)
	req.NoError(err)
	req.Len(completed, 1)
	req.Equal(uploads[1].ID, completed[0].ID)

	hasErr := true
	failed, err := db.List(ctx, &FilterOptions{HasError: &hasErr}, 0, 0)
	req.NoError(err)
	req.Len(failed, 1)
	req.Equal(uploads[2].ID, failed[0].ID)

	all, err := db.List(ctx, nil, 0, 2)
	req.NoError(err)
	req.Len(all, 2)
	// newest first
	req.Equal(uploads[3].ID, all[0].ID)

	count, err := db.Count(ctx, nil)
	req.NoError(err)
	req.Equal(4, count)

	payer := uploads[0].Payer
	byPayer, err := db.ByPayer(ctx, payer)
	req.NoError(err)
	for _, u := range byPayer {
		req.Equal(payer, u.Payer)
	}
}
