package types

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

//go:generate go run github.com/golang/mock/mockgen -destination=mock_types/mocks.go -package=mock_types . Quoter,SponsorshipChecker,SourceLedger,Bridge,SwapRouter,StorageFinalizer,BlobReader,Signer,SignerResolver

// QuoteResult is the cost estimate for storing a file, in storage network
// base units.
type QuoteResult struct {
	StorageCost      Amount
	WriteCost        Amount
	TotalCost        Amount
	EncodedSizeBytes uint64
	Epochs           uint32
}

// StorageCost is the raw cost reported by the storage network pricing oracle.
type StorageCost struct {
	StorageCost      Amount
	WriteCost        Amount
	EncodedSizeBytes uint64
}

// FeeOutcome is the result of collecting the protocol fee. The amount left
// for bridging is derived from the requested amount and the fee percent when
// the outcome is built, and can only leave the outcome as a BridgeAmount.
type FeeOutcome struct {
	requested Amount
	percent   decimal.Decimal
	debited   Amount
	remaining Amount

	// SourceTxID is the transaction that paid the fee to the treasury
	SourceTxID string
}

// SplitFee splits requested into the fee (rounded down to the smallest
// denomination) and the remainder, so that fee + remainder == requested.
func SplitFee(requested Amount, percent decimal.Decimal) (FeeOutcome, error) {
	if percent.IsNegative() || percent.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return FeeOutcome{}, fmt.Errorf("fee percent %s must be in the range [0, 1)", percent)
	}
	fee, err := AmountFromDecimal(requested.Decimal().Mul(percent).RoundFloor(AmountDecimals))
	if err != nil {
		return FeeOutcome{}, fmt.Errorf("computing fee: %w", err)
	}
	return FeeOutcome{
		requested: requested,
		percent:   percent,
		debited:   fee,
		remaining: requested - fee,
	}, nil
}

func (f FeeOutcome) AmountRequested() Amount     { return f.requested }
func (f FeeOutcome) FeePercent() decimal.Decimal { return f.percent }
func (f FeeOutcome) AmountDebited() Amount       { return f.debited }

// RemainingForBridge is the only amount the bridge step may transfer.
func (f FeeOutcome) RemainingForBridge() BridgeAmount {
	return BridgeAmount{amt: f.remaining}
}

// BridgeAmount is an amount that was left over after fee collection. It
// cannot be constructed outside of this package.
type BridgeAmount struct {
	amt Amount
}

func (b BridgeAmount) Amount() Amount { return b.amt }

func (b BridgeAmount) String() string { return b.amt.String() }

type BridgePhase int

const (
	BridgeUninitiated BridgePhase = iota
	BridgeInitiated
	BridgeAttested
	BridgeClaimed
)

var bridgePhaseNames = map[BridgePhase]string{
	BridgeUninitiated: "UNINITIATED",
	BridgeInitiated:   "INITIATED",
	BridgeAttested:    "ATTESTED",
	BridgeClaimed:     "CLAIMED",
}

func (p BridgePhase) String() string {
	if s, ok := bridgePhaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("BridgePhase(%d)", int(p))
}

// BridgeTransferHandle tracks a cross-chain transfer through
// initiate -> attest -> claim.
type BridgeTransferHandle struct {
	Phase BridgePhase

	Amount             Amount
	SourceAddress      string
	DestinationAddress string

	SourceTxID      string
	BridgeTxID      string
	Attestation     []byte
	DestinationTxID string
	// ClaimedAmount is the amount received on the destination ledger, which
	// may differ from Amount because of bridge fees and decimal truncation
	ClaimedAmount Amount
}

// Advance checks that next is the successor of h in the transfer lifecycle
// and carries the artifact required by its phase.
func (h BridgeTransferHandle) Advance(next BridgeTransferHandle) error {
	if next.Phase != h.Phase+1 {
		return fmt.Errorf("illegal bridge transition %s -> %s", h.Phase, next.Phase)
	}
	switch next.Phase {
	case BridgeInitiated:
		if next.SourceTxID == "" {
			return fmt.Errorf("initiated bridge transfer has no source transaction id")
		}
	case BridgeAttested:
		if len(next.Attestation) == 0 {
			return fmt.Errorf("attested bridge transfer has no attestation")
		}
	case BridgeClaimed:
		if next.DestinationTxID == "" {
			return fmt.Errorf("claimed bridge transfer has no destination transaction id")
		}
	}
	return nil
}

// InitiateParams are the parameters of a bridge transfer.
type InitiateParams struct {
	Amount             BridgeAmount
	SourceAddress      string
	DestinationAddress string
	// Memo is the idempotency key of the transfer, recorded on the source
	// ledger so that a submission whose response was lost can be found again
	Memo string
}

type ClaimResult struct {
	DestinationTxID string
	Amount          Amount
}

type SwapStrategy string

const (
	// SwapSponsored looks up a gas sponsored route with an aggregator
	SwapSponsored SwapStrategy = "sponsored"
	// SwapDirect executes through the smart order router, paying gas
	SwapDirect SwapStrategy = "direct"
)

type SwapParams struct {
	InputToken  string
	OutputToken string
	Amount      Amount
	Sender      string
	Strategy    SwapStrategy
	// SlippageBps is the maximum slippage in basis points
	SlippageBps uint32
}

// SwapOutcome is the result of converting the bridged asset into the storage
// token.
type SwapOutcome struct {
	InputAmount  Amount
	OutputAmount Amount
	Sponsored    bool
	TxID         string
	// Skipped is true if the bridged token already is the storage token
	Skipped bool
}

// FinalizedBlob is the terminal artifact of a successful upload.
type FinalizedBlob struct {
	BlobID            string
	BlobObjectID      string
	RegistrationTxID  string
	CertificationTxID string
}

type TxStatus string

const (
	TxStatusSuccess TxStatus = "success"
	TxStatusFailure TxStatus = "failure"
)

// TxResult is the outcome of a destination ledger transaction. A TxID alone
// is not proof of success, Status must be checked.
type TxResult struct {
	TxID   string
	Status TxStatus
	Error  string
}

func (r TxResult) Check() error {
	if r.Status != TxStatusSuccess {
		msg := r.Error
		if msg == "" {
			msg = fmt.Sprintf("status %q", r.Status)
		}
		return fmt.Errorf("%w: tx %s: %s", ErrTxFailed, r.TxID, msg)
	}
	return nil
}

// ShardPlan is the erasure coded representation of a blob, as produced by
// the storage network encoder.
type ShardPlan struct {
	Metadata      []byte
	SliversByNode map[string][]byte
}

type EncodedBlob struct {
	BlobID   string
	RootHash []byte
	Plan     ShardPlan
}

type RegisterParams struct {
	BlobID    string
	RootHash  []byte
	Size      uint64
	Owner     string
	Epochs    uint32
	Deletable bool
}

type Registration struct {
	TxResult
	BlobID       string
	BlobObjectID string
}

// Confirmation is a storage node's acknowledgement that it holds its shards.
type Confirmation struct {
	NodeID    string
	Signature []byte
}

type CertifyParams struct {
	BlobID        string
	BlobObjectID  string
	Deletable     bool
	Confirmations []Confirmation
}

type TransferParams struct {
	From   string
	To     string
	Amount Amount
	Memo   string
}

// TransferRecord is a confirmed transfer found on the source ledger.
type TransferRecord struct {
	TxID   string
	Amount Amount
}

type SponsorshipQuery struct {
	InputToken  string
	OutputToken string
	Amount      Amount
	Sender      string
}

type Quoter interface {
	StorageCost(ctx context.Context, sizeBytes uint64, epochs uint32) (*StorageCost, error)
}

type SponsorshipChecker interface {
	GasSponsored(ctx context.Context, q SponsorshipQuery) (bool, error)
}

// SourceLedger is the source chain client used to pay the protocol fee.
type SourceLedger interface {
	Balance(ctx context.Context, address string) (Amount, error)
	BuildTransfer(ctx context.Context, p TransferParams) (SigningRequest, error)
	SubmitAndConfirm(ctx context.Context, signed []byte) (string, error)
	// LookupTransfer returns the confirmed transfer from the given address
	// carrying memo, or nil if there is none
	LookupTransfer(ctx context.Context, from string, memo string) (*TransferRecord, error)
}

type Bridge interface {
	Initiate(ctx context.Context, p InitiateParams, signer Signer) (*BridgeTransferHandle, error)
	// LookupTransfer returns the transfer from sourceAddress carrying memo,
	// or nil if the source ledger never accepted one
	LookupTransfer(ctx context.Context, sourceAddress string, memo string) (*BridgeTransferHandle, error)
	AwaitAttestation(ctx context.Context, h BridgeTransferHandle) (*BridgeTransferHandle, error)
	Claim(ctx context.Context, h BridgeTransferHandle, signer Signer) (*ClaimResult, error)
}

type SwapRouter interface {
	Swap(ctx context.Context, p SwapParams, signer Signer) (*SwapOutcome, error)
}

type StorageFinalizer interface {
	Encode(ctx context.Context, content []byte) (*EncodedBlob, error)
	Register(ctx context.Context, p RegisterParams, signer Signer) (*Registration, error)
	// LookupRegistration returns the blob object p.Owner registered for
	// p.BlobID with the same epochs and deletable flag, or nil
	LookupRegistration(ctx context.Context, p RegisterParams) (*Registration, error)
	Distribute(ctx context.Context, plan ShardPlan, blobObjectID string) ([]Confirmation, error)
	Certify(ctx context.Context, p CertifyParams, signer Signer) (*TxResult, error)
	// LookupCertification returns the transaction that certified the blob
	// object, or nil if it is not certified
	LookupCertification(ctx context.Context, blobObjectID string) (*TxResult, error)
	Delete(ctx context.Context, blobObjectID string, owner string, signer Signer) (*TxResult, error)
}

// BlobReader is the read path of the storage network.
type BlobReader interface {
	ReadBlob(ctx context.Context, blobID string) ([]byte, error)
	BlobAttributes(ctx context.Context, blobObjectID string) (map[string]string, error)
}
