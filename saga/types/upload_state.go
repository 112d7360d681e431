package types

import (
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

type UploadRetryType string

const (
	// UploadRetryAuto means the upload is resumed automatically on restart
	UploadRetryAuto UploadRetryType = "auto"
	// UploadRetryManual means the upload failed but can be resumed by the user
	UploadRetryManual UploadRetryType = "manual"
	// UploadRetryFatal means the upload failed and cannot be resumed
	UploadRetryFatal UploadRetryType = "fatal"
)

type FeeTier string

const (
	FeeTierUnknown     FeeTier = ""
	FeeTierSponsored   FeeTier = "sponsored"
	FeeTierUnsponsored FeeTier = "unsponsored"
)

// UploadState is the persisted state of one upload, keyed by the request
// digest. It holds every artifact produced so far so that the upload can be
// resumed after the last completed checkpoint.
type UploadState struct {
	ID        cid.Cid
	CreatedAt time.Time
	Network   string

	FilePath      string
	FileHash      multihash.Multihash
	FileSizeBytes uint64
	Epochs        uint32
	Deletable     bool
	Payer         string
	// RequestedReceiver is the receiver named in the request (may be empty)
	RequestedReceiver string
	// Receiver is the resolved destination address
	Receiver string

	// FeeTier is decided once, before fee collection, and never revised
	FeeTier FeeTier

	Quote         QuoteResult
	Fee           FeeOutcome
	Bridge        BridgeTransferHandle
	Swap          SwapOutcome
	Blob          FinalizedBlob
	Confirmations []Confirmation

	Checkpoint   uploadcheckpoints.Checkpoint
	CheckpointAt time.Time
	State        uploadcheckpoints.State
	Err          string
	Retry        UploadRetryType
	// Attempts counts the attempts made for each step, by state name
	Attempts map[string]int
}

func NewUploadState(req UploadRequest, network string) *UploadState {
	p := req.Params()
	return &UploadState{
		ID:                req.Digest(),
		CreatedAt:         time.Now(),
		Network:           network,
		FilePath:          p.FilePath,
		FileHash:          p.FileHash,
		FileSizeBytes:     p.FileSizeBytes,
		Epochs:            p.Epochs,
		Deletable:         p.Deletable,
		Payer:             p.Payer,
		RequestedReceiver: p.Receiver,
		Checkpoint:        uploadcheckpoints.Accepted,
		State:             uploadcheckpoints.Accepted.Next(),
		Retry:             UploadRetryAuto,
		Attempts:          make(map[string]int),
	}
}

// Request rebuilds the immutable request the upload was created from.
func (s *UploadState) Request() (UploadRequest, error) {
	return NewUploadRequest(UploadParams{
		FilePath:      s.FilePath,
		FileHash:      s.FileHash,
		FileSizeBytes: s.FileSizeBytes,
		Epochs:        s.Epochs,
		Deletable:     s.Deletable,
		Payer:         s.Payer,
		Receiver:      s.RequestedReceiver,
	})
}

func (s *UploadState) IdempotencyKey(step uploadcheckpoints.State) string {
	return IdempotencyKey(s.ID, string(step))
}

// LastArtifact returns the artifact produced by the last completed
// checkpoint, or nil if nothing was produced yet.
func (s *UploadState) LastArtifact() interface{} {
	switch s.Checkpoint {
	case uploadcheckpoints.Quoted:
		return s.Quote
	case uploadcheckpoints.FeeCollected:
		return s.Fee
	case uploadcheckpoints.BridgeInitiated, uploadcheckpoints.BridgeAttested, uploadcheckpoints.BridgeClaimed:
		return s.Bridge
	case uploadcheckpoints.Swapped:
		return s.Swap
	case uploadcheckpoints.BlobRegistered, uploadcheckpoints.BlobStored, uploadcheckpoints.Complete:
		return s.Blob
	}
	return nil
}

// FinalizeAmount is the amount available to pay for storage: the swap output,
// or the claimed amount if the swap was skipped.
func (s *UploadState) FinalizeAmount() Amount {
	if s.Swap.Skipped {
		return s.Bridge.ClaimedAmount
	}
	return s.Swap.OutputAmount
}

func (s *UploadState) IsTerminal() bool {
	return s.Checkpoint == uploadcheckpoints.Complete || (s.Err != "" && s.Retry == UploadRetryFatal)
}
