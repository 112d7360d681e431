package db

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/multiformats/go-multihash"

	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

func GenerateUploads() ([]types.UploadState, error) {
	return GenerateNUploads(5)
}

func GenerateNUploads(count int) ([]types.UploadState, error) {
	uploads := make([]types.UploadState, 0, count)
	for i := 0; i < count; i++ {
		content := make([]byte, 64)
		rand.Read(content) //nolint:gosec

		hash, err := multihash.Sum(content, multihash.SHA2_256, -1)
		if err != nil {
			return nil, err
		}
		req, err := types.NewUploadRequest(types.UploadParams{
			FilePath:      fmt.Sprintf("/data/file-%d.bin", i),
			FileHash:      hash,
			FileSizeBytes: uint64(len(content)),
			Epochs:        uint32(1 + rand.Intn(50)), //nolint:gosec
			Deletable:     i%2 == 0,
			Payer:         fmt.Sprintf("payer-%d", i%3),
		})
		if err != nil {
			return nil, err
		}

		pct, err := types.ParseFeePercent("0.02")
		if err != nil {
			return nil, err
		}
		fee, err := types.SplitFee(types.Amount(1_000_000_000+rand.Intn(1_000_000)), pct) //nolint:gosec
		if err != nil {
			return nil, err
		}
		fee.SourceTxID = fmt.Sprintf("fee-tx-%d", i)

		upload := types.NewUploadState(req, "testnet")
		upload.CreatedAt = time.Now().Add(time.Duration(i) * time.Second).Truncate(time.Second)
		upload.Receiver = fmt.Sprintf("0xreceiver%d", i)
		upload.FeeTier = types.FeeTierUnsponsored
		upload.Quote = types.QuoteResult{
			StorageCost:      types.Amount(100 + i),
			WriteCost:        types.Amount(10),
			TotalCost:        types.Amount(110 + i),
			EncodedSizeBytes: uint64(len(content)) * 5,
			Epochs:           upload.Epochs,
		}
		upload.Fee = fee
		upload.Checkpoint = uploadcheckpoints.FeeCollected
		upload.CheckpointAt = upload.CreatedAt
		upload.State = uploadcheckpoints.FeeCollected.Next()
		upload.Attempts[string(uploadcheckpoints.FeeCollecting)] = 1
		uploads = append(uploads, *upload)
	}

	return uploads, nil
}
