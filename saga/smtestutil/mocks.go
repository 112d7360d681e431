package smtestutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/golang/mock/gomock"
	"github.com/ipfs/go-cid"

	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/mock_types"
)

type CollaboratorStub struct {
	*mock_types.MockQuoter
	*mock_types.MockSponsorshipChecker
	*mock_types.MockSourceLedger
	*mock_types.MockBridge
	*mock_types.MockSwapRouter
	*mock_types.MockStorageFinalizer
	*mock_types.MockBlobReader
	Signers *SignerResolver

	lk                 sync.Mutex
	unblockInitiate    map[cid.Cid]chan struct{}
	unblockAttestation map[cid.Cid]chan struct{}
	unblockCertify     map[cid.Cid]chan struct{}
}

func NewCollaboratorStub(ctrl *gomock.Controller) *CollaboratorStub {
	return &CollaboratorStub{
		MockQuoter:             mock_types.NewMockQuoter(ctrl),
		MockSponsorshipChecker: mock_types.NewMockSponsorshipChecker(ctrl),
		MockSourceLedger:       mock_types.NewMockSourceLedger(ctrl),
		MockBridge:             mock_types.NewMockBridge(ctrl),
		MockSwapRouter:         mock_types.NewMockSwapRouter(ctrl),
		MockStorageFinalizer:   mock_types.NewMockStorageFinalizer(ctrl),
		MockBlobReader:         mock_types.NewMockBlobReader(ctrl),
		Signers:                &SignerResolver{},

		unblockInitiate:    make(map[cid.Cid]chan struct{}),
		unblockAttestation: make(map[cid.Cid]chan struct{}),
		unblockCertify:     make(map[cid.Cid]chan struct{}),
	}
}

func (cs *CollaboratorStub) UnblockInitiate(id cid.Cid) {
	cs.lk.Lock()
	ch := cs.unblockInitiate[id]
	cs.lk.Unlock()
	close(ch)
}

func (cs *CollaboratorStub) UnblockAttestation(id cid.Cid) {
	cs.lk.Lock()
	ch := cs.unblockAttestation[id]
	cs.lk.Unlock()
	close(ch)
}

func (cs *CollaboratorStub) UnblockCertify(id cid.Cid) {
	cs.lk.Lock()
	ch := cs.unblockCertify[id]
	cs.lk.Unlock()
	close(ch)
}

func (cs *CollaboratorStub) wait(ctx context.Context, chans map[cid.Cid]chan struct{}, id cid.Cid) error {
	cs.lk.Lock()
	ch := chans[id]
	cs.lk.Unlock()
	if ch != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
	return ctx.Err()
}

// ForUpload returns a builder that sets up the collaborator calls made by
// the upload of req. The default storage cost makes a quote of 10 once the
// default transaction allowance of 0.015 is added.
func (cs *CollaboratorStub) ForUpload(req types.UploadRequest) *UploadStubBuilder {
	id := req.Digest()
	receiver := req.Receiver()
	if receiver == "" {
		receiver, _ = cs.Signers.DeriveReceiver(req.Payer())
	}
	short := id.String()[len(id.String())-8:]
	return &UploadStubBuilder{
		stub:     cs,
		req:      req,
		id:       id,
		receiver: receiver,
		out: &StubbedUploadOutput{
			Receiver:        receiver,
			StorageCost:     types.MustParseAmount("6"),
			WriteCost:       types.MustParseAmount("3.985"),
			FeeTxID:         "fee-" + short,
			SourceTxID:      "bridge-src-" + short,
			BridgeTxID:      "bridge-seq-" + short,
			Attestation:     []byte("vaa-" + short),
			ClaimTxID:       "claim-" + short,
			SwapTxID:        "swap-" + short,
			SwapOutput:      types.MustParseAmount("42.5"),
			BlobID:          "blob-" + short,
			BlobObjectID:    "0xobj" + short,
			RegisterTxID:    "register-" + short,
			CertifyTxID:     "certify-" + short,
			Confirmations:   []types.Confirmation{{NodeID: "node-1", Signature: []byte("sig-1")}, {NodeID: "node-2", Signature: []byte("sig-2")}},
			InitiateStarted: make(chan struct{}),
		},
	}
}

type UploadStubBuilder struct {
	stub     *CollaboratorStub
	req      types.UploadRequest
	id       cid.Cid
	receiver string
	out      *StubbedUploadOutput
}

// WithClaimedAmount sets the amount credited by the claim. By default the
// claim credits the whole bridged amount.
func (ub *UploadStubBuilder) WithClaimedAmount(a types.Amount) *UploadStubBuilder {
	ub.out.claimedOverride = &a
	return ub
}

func (ub *UploadStubBuilder) WithStorageCost(storage, write types.Amount) *UploadStubBuilder {
	ub.out.StorageCost = storage
	ub.out.WriteCost = write
	return ub
}

// SetupAll sets up every call of a successful upload that is not sponsored.
func (ub *UploadStubBuilder) SetupAll() *UploadStubBuilder {
	return ub.SetupQuote().
		SetupSponsorship(false).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(false).
		SetupAttestation(false).
		SetupClaim().
		SetupSwap(types.SwapDirect).
		SetupEncode().
		SetupRegister().
		SetupDistribute().
		SetupCertify(false)
}

func (ub *UploadStubBuilder) SetupQuote() *UploadStubBuilder {
	ub.stub.MockQuoter.EXPECT().StorageCost(gomock.Any(), ub.req.FileSizeBytes(), ub.req.Epochs()).
		Return(&types.StorageCost{
			StorageCost:      ub.out.StorageCost,
			WriteCost:        ub.out.WriteCost,
			EncodedSizeBytes: ub.req.FileSizeBytes() * 5,
		}, nil).AnyTimes()
	return ub
}

func (ub *UploadStubBuilder) SetupQuoteFailure(err error, times int) *UploadStubBuilder {
	ub.stub.MockQuoter.EXPECT().StorageCost(gomock.Any(), ub.req.FileSizeBytes(), ub.req.Epochs()).
		Return(nil, err).Times(times)
	return ub
}

func (ub *UploadStubBuilder) SetupSponsorship(sponsored bool) *UploadStubBuilder {
	ub.stub.MockSponsorshipChecker.EXPECT().GasSponsored(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q types.SponsorshipQuery) (bool, error) {
			ub.stub.lk.Lock()
			ub.out.SponsorshipQuery = &q
			ub.stub.lk.Unlock()
			return sponsored, nil
		}).AnyTimes()
	return ub
}

func (ub *UploadStubBuilder) SetupFee(balance types.Amount) *UploadStubBuilder {
	payer := ub.req.Payer()
	ub.stub.MockSourceLedger.EXPECT().Balance(gomock.Any(), payer).Return(balance, nil).AnyTimes()
	ub.stub.MockSourceLedger.EXPECT().BuildTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p types.TransferParams) (types.SigningRequest, error) {
			ub.stub.lk.Lock()
			ub.out.FeeTransfer = &p
			ub.stub.lk.Unlock()
			return types.SigningRequest{Kind: types.SignLegacy, Payload: []byte(p.Memo)}, nil
		}).AnyTimes()
	ub.stub.MockSourceLedger.EXPECT().SubmitAndConfirm(gomock.Any(), gomock.Any()).Return(ub.out.FeeTxID, nil).Times(1)
	return ub
}

func (ub *UploadStubBuilder) SetupFeeFailure(balance types.Amount, err error) *UploadStubBuilder {
	payer := ub.req.Payer()
	ub.stub.MockSourceLedger.EXPECT().Balance(gomock.Any(), payer).Return(balance, nil).AnyTimes()
	ub.stub.MockSourceLedger.EXPECT().BuildTransfer(gomock.Any(), gomock.Any()).
		Return(types.SigningRequest{Kind: types.SignLegacy, Payload: []byte("transfer")}, nil).AnyTimes()
	ub.stub.MockSourceLedger.EXPECT().SubmitAndConfirm(gomock.Any(), gomock.Any()).Return("", err).AnyTimes()
	ub.stub.MockSourceLedger.EXPECT().LookupTransfer(gomock.Any(), payer, gomock.Any()).Return(nil, nil).AnyTimes()
	return ub
}

func (ub *UploadStubBuilder) SetupInitiate(blocking bool) *UploadStubBuilder {
	ub.stub.lk.Lock()
	if blocking {
		ub.stub.unblockInitiate[ub.id] = make(chan struct{})
	} else {
		delete(ub.stub.unblockInitiate, ub.id)
	}
	ub.stub.lk.Unlock()

	ub.stub.MockBridge.EXPECT().Initiate(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p types.InitiateParams, _ types.Signer) (*types.BridgeTransferHandle, error) {
			ub.stub.lk.Lock()
			ub.out.Initiate = &p
			ub.stub.lk.Unlock()
			ub.out.initiateOnce.Do(func() { close(ub.out.InitiateStarted) })
			if err := ub.stub.wait(ctx, ub.stub.unblockInitiate, ub.id); err != nil {
				return nil, err
			}
			return &types.BridgeTransferHandle{
				Phase:      types.BridgeInitiated,
				Amount:     p.Amount.Amount(),
				SourceTxID: ub.out.SourceTxID,
				BridgeTxID: ub.out.BridgeTxID,
			}, nil
		}).Times(1)
	return ub
}

func (ub *UploadStubBuilder) SetupInitiateFailure(err error) *UploadStubBuilder {
	ub.stub.MockBridge.EXPECT().Initiate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, err)
	return ub
}

func (ub *UploadStubBuilder) SetupAttestation(blocking bool) *UploadStubBuilder {
	ub.stub.lk.Lock()
	if blocking {
		ub.stub.unblockAttestation[ub.id] = make(chan struct{})
	} else {
		delete(ub.stub.unblockAttestation, ub.id)
	}
	ub.stub.lk.Unlock()

	ub.stub.MockBridge.EXPECT().AwaitAttestation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, h types.BridgeTransferHandle) (*types.BridgeTransferHandle, error) {
			if err := ub.stub.wait(ctx, ub.stub.unblockAttestation, ub.id); err != nil {
				return nil, err
			}
			h.Phase = types.BridgeAttested
			h.Attestation = ub.out.Attestation
			return &h, nil
		}).Times(1)
	return ub
}

// SetupAttestationNever makes the attestation wait until its context is
// done. started is closed when the wait begins.
func (ub *UploadStubBuilder) SetupAttestationNever(started chan struct{}) *UploadStubBuilder {
	ub.stub.MockBridge.EXPECT().AwaitAttestation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, h types.BridgeTransferHandle) (*types.BridgeTransferHandle, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}).Times(1)
	return ub
}

// SetupClaim makes the claim fail with each of failures in turn, then
// succeed.
func (ub *UploadStubBuilder) SetupClaim(failures ...error) *UploadStubBuilder {
	calls := 0
	ub.stub.MockBridge.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, h types.BridgeTransferHandle, _ types.Signer) (*types.ClaimResult, error) {
			ub.stub.lk.Lock()
			defer ub.stub.lk.Unlock()
			calls++
			ub.out.ClaimCalls = calls
			if calls <= len(failures) {
				return nil, failures[calls-1]
			}
			claimed := h.Amount
			if ub.out.claimedOverride != nil {
				claimed = *ub.out.claimedOverride
			}
			return &types.ClaimResult{DestinationTxID: ub.out.ClaimTxID, Amount: claimed}, nil
		}).Times(len(failures) + 1)
	return ub
}

// SetupClaimFailure makes every claim attempt fail with err.
func (ub *UploadStubBuilder) SetupClaimFailure(err error, times int) *UploadStubBuilder {
	ub.stub.MockBridge.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ types.BridgeTransferHandle, _ types.Signer) (*types.ClaimResult, error) {
			ub.stub.lk.Lock()
			ub.out.ClaimCalls++
			ub.stub.lk.Unlock()
			return nil, err
		}).Times(times)
	return ub
}

func (ub *UploadStubBuilder) SetupSwap(strategy types.SwapStrategy) *UploadStubBuilder {
	ub.stub.MockSwapRouter.EXPECT().Swap(gomock.Any(), swapStrategy(strategy), gomock.Any()).
		DoAndReturn(func(_ context.Context, p types.SwapParams, _ types.Signer) (*types.SwapOutcome, error) {
			ub.stub.lk.Lock()
			ub.out.Swaps = append(ub.out.Swaps, p)
			ub.stub.lk.Unlock()
			return &types.SwapOutcome{
				InputAmount:  p.Amount,
				OutputAmount: ub.out.SwapOutput,
				TxID:         ub.out.SwapTxID,
			}, nil
		}).Times(1)
	return ub
}

func (ub *UploadStubBuilder) SetupSwapFailure(strategy types.SwapStrategy, err error) *UploadStubBuilder {
	ub.stub.MockSwapRouter.EXPECT().Swap(gomock.Any(), swapStrategy(strategy), gomock.Any()).
		DoAndReturn(func(_ context.Context, p types.SwapParams, _ types.Signer) (*types.SwapOutcome, error) {
			ub.stub.lk.Lock()
			ub.out.Swaps = append(ub.out.Swaps, p)
			ub.stub.lk.Unlock()
			return nil, err
		}).Times(1)
	return ub
}

func (ub *UploadStubBuilder) SetupEncode() *UploadStubBuilder {
	ub.stub.MockStorageFinalizer.EXPECT().Encode(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, content []byte) (*types.EncodedBlob, error) {
			return &types.EncodedBlob{
				BlobID:   ub.out.BlobID,
				RootHash: []byte("root"),
				Plan: types.ShardPlan{
					Metadata:      []byte("metadata"),
					SliversByNode: map[string][]byte{"node-1": content, "node-2": content},
				},
			}, nil
		}).AnyTimes()
	return ub
}

func (ub *UploadStubBuilder) SetupRegister() *UploadStubBuilder {
	ub.stub.MockStorageFinalizer.EXPECT().LookupRegistration(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	ub.stub.MockStorageFinalizer.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p types.RegisterParams, _ types.Signer) (*types.Registration, error) {
			ub.stub.lk.Lock()
			ub.out.Register = &p
			ub.stub.lk.Unlock()
			return &types.Registration{
				TxResult:     types.TxResult{TxID: ub.out.RegisterTxID, Status: types.TxStatusSuccess},
				BlobID:       p.BlobID,
				BlobObjectID: ub.out.BlobObjectID,
			}, nil
		}).Times(1)
	return ub
}

func (ub *UploadStubBuilder) SetupDistribute() *UploadStubBuilder {
	ub.stub.MockStorageFinalizer.EXPECT().Distribute(gomock.Any(), gomock.Any(), ub.out.BlobObjectID).
		Return(ub.out.Confirmations, nil).Times(1)
	return ub
}

func (ub *UploadStubBuilder) SetupCertify(blocking bool) *UploadStubBuilder {
	ub.stub.lk.Lock()
	if blocking {
		ub.stub.unblockCertify[ub.id] = make(chan struct{})
	} else {
		delete(ub.stub.unblockCertify, ub.id)
	}
	ub.stub.lk.Unlock()

	ub.stub.MockStorageFinalizer.EXPECT().LookupCertification(gomock.Any(), ub.out.BlobObjectID).Return(nil, nil).AnyTimes()
	ub.stub.MockStorageFinalizer.EXPECT().Certify(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p types.CertifyParams, _ types.Signer) (*types.TxResult, error) {
			if err := ub.stub.wait(ctx, ub.stub.unblockCertify, ub.id); err != nil {
				return nil, err
			}
			return &types.TxResult{TxID: ub.out.CertifyTxID, Status: types.TxStatusSuccess}, nil
		}).Times(1)
	return ub
}

// SetupCertifyStatus makes certification return a transaction digest with
// the given status.
func (ub *UploadStubBuilder) SetupCertifyStatus(status types.TxStatus, times int) *UploadStubBuilder {
	ub.stub.MockStorageFinalizer.EXPECT().LookupCertification(gomock.Any(), ub.out.BlobObjectID).Return(nil, nil).AnyTimes()
	ub.stub.MockStorageFinalizer.EXPECT().Certify(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&types.TxResult{TxID: ub.out.CertifyTxID, Status: status, Error: "MoveAbort in certify_blob"}, nil).Times(times)
	return ub
}

func (ub *UploadStubBuilder) Output() *StubbedUploadOutput {
	return ub.out
}

// StubbedUploadOutput holds the values returned by the stubbed
// collaborators, and records the parameters they were called with.
type StubbedUploadOutput struct {
	Receiver      string
	StorageCost   types.Amount
	WriteCost     types.Amount
	FeeTxID       string
	SourceTxID    string
	BridgeTxID    string
	Attestation   []byte
	ClaimTxID     string
	SwapTxID      string
	SwapOutput    types.Amount
	BlobID        string
	BlobObjectID  string
	RegisterTxID  string
	CertifyTxID   string
	Confirmations []types.Confirmation

	SponsorshipQuery *types.SponsorshipQuery
	FeeTransfer      *types.TransferParams
	Initiate         *types.InitiateParams
	ClaimCalls       int
	Swaps            []types.SwapParams
	Register         *types.RegisterParams

	// InitiateStarted is closed when the bridge transfer is first submitted
	InitiateStarted chan struct{}

	claimedOverride *types.Amount
	initiateOnce    sync.Once
}

type strategyMatcher struct {
	strategy types.SwapStrategy
}

func swapStrategy(s types.SwapStrategy) gomock.Matcher {
	return strategyMatcher{strategy: s}
}

func (m strategyMatcher) Matches(x interface{}) bool {
	p, ok := x.(types.SwapParams)
	return ok && p.Strategy == m.strategy
}

func (m strategyMatcher) String() string {
	return fmt.Sprintf("swap with strategy %s", m.strategy)
}

// Signer signs by prefixing the payload with its address.
type Signer struct {
	Addr string
}

func (s *Signer) Address() string { return s.Addr }

func (s *Signer) Sign(_ context.Context, req types.SigningRequest) ([]byte, error) {
	return append([]byte(s.Addr+":"), req.Payload...), nil
}

type SignerResolver struct{}

var _ types.SignerResolver = (*SignerResolver)(nil)

func (r *SignerResolver) SourceSigner(payer string) (types.Signer, error) {
	return &Signer{Addr: payer}, nil
}

func (r *SignerResolver) DestinationSigner(_ string, receiver string) (types.Signer, error) {
	return &Signer{Addr: receiver}, nil
}

func (r *SignerResolver) DeriveReceiver(payer string) (string, error) {
	h := sha256.Sum256([]byte(payer))
	return "0x" + hex.EncodeToString(h[:]), nil
}
