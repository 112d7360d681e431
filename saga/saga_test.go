package saga

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhuhnke/solana-walrus/db"
	"github.com/jhuhnke/solana-walrus/saga/smtestutil"
	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

const (
	testPayer    = "7YttLkHDoNj9wyDur5pM1ejNaAvT9X4eqaYcHQqtj2G5"
	testTreasury = "GBMTWhsnLAPxLXcwDoFu45VrzBYuCyGU5eLSavksR1Qc"
)

type harness struct {
	t     *testing.T
	ctx   context.Context
	cfg   Config
	clock clock.Clock
	sqldb *sql.DB

	Stub *smtestutil.CollaboratorStub
	Saga *Saga
}

type harnessOpt func(h *harness)

func withConfig(f func(cfg *Config)) harnessOpt {
	return func(h *harness) {
		f(&h.cfg)
	}
}

func withClock(clk clock.Clock) harnessOpt {
	return func(h *harness) {
		h.clock = clk
	}
}

func testConfig() Config {
	return Config{
		Network:               "testnet",
		Treasury:              testTreasury,
		BridgedToken:          "0x5d4b302506645c37ff133b98c4b50a5ae14841659738d6d733d59d0d217a93bf::coin::COIN",
		StorageToken:          "0x8270feb7375eee355e64fdb69c50abb6b5f9393a722883c1cf45f8e26048810a::wal::WAL",
		TxCostAllowance:       types.MustParseAmount("0.015"),
		SponsoredFeePercent:   decimal.RequireFromString("0.005"),
		UnsponsoredFeePercent: decimal.RequireFromString("0.01"),
		PreferSponsored:       true,
		SlippageBps:           100,
		QuoteMaxAttempts:      3,
		FeeMaxAttempts:        3,
		InitiateMaxAttempts:   3,
		ClaimMaxAttempts:      3,
		ClaimRetryDelay:       time.Millisecond,
		AttestationTimeout:    time.Minute,
		FinalizeMaxAttempts:   3,
		BackoffMin:            time.Millisecond,
		BackoffMax:            5 * time.Millisecond,
		BackoffFactor:         2,
	}
}

func newHarness(t *testing.T, opts ...harnessOpt) *harness {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	sqldb := db.CreateTestTmpDB(t)
	require.NoError(t, db.CreateAllTables(ctx, sqldb))

	h := &harness{
		t:     t,
		ctx:   ctx,
		cfg:   testConfig(),
		clock: clock.New(),
		sqldb: sqldb,
		Stub:  smtestutil.NewCollaboratorStub(ctrl),
	}
	for _, opt := range opts {
		opt(h)
	}

	// the mocks share method names, so they are passed one by one
	s, err := New(h.cfg, sqldb, Clients{
		Quoter:      h.Stub.MockQuoter,
		Sponsorship: h.Stub.MockSponsorshipChecker,
		Ledger:      h.Stub.MockSourceLedger,
		Bridge:      h.Stub.MockBridge,
		Swap:        h.Stub.MockSwapRouter,
		Finalizer:   h.Stub.MockStorageFinalizer,
		Reader:      h.Stub.MockBlobReader,
		Signers:     h.Stub.Signers,
	}, WithClock(h.clock))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	h.Saga = s
	return h
}

func (h *harness) newRequest(content string, deletable bool) types.UploadRequest {
	path := filepath.Join(h.t.TempDir(), "blob.txt")
	require.NoError(h.t, os.WriteFile(path, []byte(content), 0644))
	req, err := types.NewUploadRequestFromFile(path, 5, deletable, testPayer, "")
	require.NoError(h.t, err)
	return req
}

func (h *harness) status(req types.UploadRequest) *types.UploadState {
	st, err := h.Saga.Status(h.ctx, req.Digest())
	require.NoError(h.t, err)
	return st
}

func (h *harness) requireFailed(err error, state uploadcheckpoints.State, last uploadcheckpoints.Checkpoint) *UploadError {
	var uerr *UploadError
	require.ErrorAs(h.t, err, &uerr)
	require.Equal(h.t, state, uerr.State)
	require.Equal(h.t, last, uerr.LastCheckpoint)
	return uerr
}

func TestUploadHappyPath(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("hello walrus", true)
	out := h.Stub.ForUpload(req).SetupAll().Output()

	blob, err := h.Saga.Upload(h.ctx, req)
	require.NoError(t, err)
	require.Equal(t, out.BlobID, blob.BlobID)
	require.Equal(t, out.BlobObjectID, blob.BlobObjectID)
	require.Equal(t, out.RegisterTxID, blob.RegistrationTxID)
	require.Equal(t, out.CertifyTxID, blob.CertificationTxID)

	st := h.status(req)
	require.Equal(t, uploadcheckpoints.Complete, st.Checkpoint)
	require.Equal(t, uploadcheckpoints.Done, st.State)
	require.Empty(t, st.Err)
	require.Equal(t, out.Receiver, st.Receiver)
	require.Equal(t, types.FeeTierUnsponsored, st.FeeTier)

	// 10 quoted at 1%: 0.1 to the treasury, 9.9 bridged
	require.Equal(t, types.MustParseAmount("10"), st.Quote.TotalCost)
	require.Equal(t, types.MustParseAmount("0.1"), st.Fee.AmountDebited())
	require.Equal(t, types.MustParseAmount("9.9"), st.Fee.RemainingForBridge().Amount())
	require.Equal(t, out.FeeTxID, st.Fee.SourceTxID)

	require.Equal(t, types.TransferParams{
		From:   testPayer,
		To:     testTreasury,
		Amount: types.MustParseAmount("0.1"),
		Memo:   st.IdempotencyKey(uploadcheckpoints.FeeCollecting),
	}, *out.FeeTransfer)
	require.Equal(t, types.MustParseAmount("9.9"), out.Initiate.Amount.Amount())
	require.Equal(t, testPayer, out.Initiate.SourceAddress)
	require.Equal(t, out.Receiver, out.Initiate.DestinationAddress)

	require.Equal(t, types.BridgeClaimed, st.Bridge.Phase)
	require.Equal(t, out.ClaimTxID, st.Bridge.DestinationTxID)
	require.Equal(t, types.MustParseAmount("9.9"), st.Bridge.ClaimedAmount)

	require.Len(t, out.Swaps, 1)
	require.Equal(t, types.SwapDirect, out.Swaps[0].Strategy)
	require.Equal(t, types.MustParseAmount("9.9"), out.Swaps[0].Amount)
	require.Equal(t, out.SwapOutput, st.Swap.OutputAmount)
	require.False(t, st.Swap.Sponsored)

	require.Equal(t, out.Receiver, out.Register.Owner)
	require.True(t, out.Register.Deletable)
	require.Len(t, st.Confirmations, len(out.Confirmations))

	fees, err := h.Saga.FeesCollected(h.ctx)
	require.NoError(t, err)
	require.Equal(t, types.MustParseAmount("0.1"), fees)

	logs, err := h.Saga.Logs(h.ctx, req.Digest())
	require.NoError(t, err)
	require.NotEmpty(t, logs)

	// a completed upload returns its blob without any side effect
	again, err := h.Saga.Upload(h.ctx, req)
	require.NoError(t, err)
	require.Equal(t, blob, again)
}

func TestUploadSponsoredTier(t *testing.T) {
	h := newHarness(t, withConfig(func(cfg *Config) {
		cfg.SponsoredFeePercent = decimal.RequireFromString("0.01")
	}))
	req := h.newRequest("sponsored", false)
	out := h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(true).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(false).
		SetupAttestation(false).
		SetupClaim().
		SetupSwap(types.SwapSponsored).
		SetupEncode().
		SetupRegister().
		SetupDistribute().
		SetupCertify(false).
		Output()

	_, err := h.Saga.Upload(h.ctx, req)
	require.NoError(t, err)

	st := h.status(req)
	require.Equal(t, uploadcheckpoints.Complete, st.Checkpoint)
	require.Equal(t, uploadcheckpoints.Done, st.State)
	require.Equal(t, types.FeeTierSponsored, st.FeeTier)
	require.Equal(t, types.MustParseAmount("10"), out.SponsorshipQuery.Amount)

	// 10 quoted at 1%: 0.1 to the treasury, 9.9 bridged and swapped
	require.True(t, decimal.RequireFromString("0.01").Equal(st.Fee.FeePercent()))
	require.Equal(t, types.MustParseAmount("0.1"), st.Fee.AmountDebited())
	require.Equal(t, types.MustParseAmount("9.9"), st.Fee.RemainingForBridge().Amount())
	require.Equal(t, types.MustParseAmount("0.1"), out.FeeTransfer.Amount)
	require.Equal(t, types.MustParseAmount("9.9"), out.Initiate.Amount.Amount())

	require.True(t, st.Swap.Sponsored)
	require.Len(t, out.Swaps, 1)
	require.Equal(t, types.SwapSponsored, out.Swaps[0].Strategy)
	require.Equal(t, types.MustParseAmount("9.9"), out.Swaps[0].Amount)
}

func TestSwapFallsBackToDirectWithClaimedAmount(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("fallback", false)
	claimed := types.MustParseAmount("9.94")
	out := h.Stub.ForUpload(req).
		WithClaimedAmount(claimed).
		SetupQuote().
		SetupSponsorship(true).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(false).
		SetupAttestation(false).
		SetupClaim().
		SetupSwapFailure(types.SwapSponsored, errors.New("aggregator returned no quote")).
		SetupSwap(types.SwapDirect).
		SetupEncode().
		SetupRegister().
		SetupDistribute().
		SetupCertify(false).
		Output()

	_, err := h.Saga.Upload(h.ctx, req)
	require.NoError(t, err)

	require.Len(t, out.Swaps, 2)
	require.Equal(t, types.SwapSponsored, out.Swaps[0].Strategy)
	require.Equal(t, types.SwapDirect, out.Swaps[1].Strategy)
	for _, p := range out.Swaps {
		require.Equal(t, claimed, p.Amount)
	}

	st := h.status(req)
	require.Equal(t, claimed, st.Swap.InputAmount)
	require.False(t, st.Swap.Sponsored)
	require.Equal(t, 2, st.Attempts[string(uploadcheckpoints.Swapping)])
}

func TestSponsoredSwapUnauthorizedDoesNotFallBack(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("unauthorized", false)
	h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(true).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(false).
		SetupAttestation(false).
		SetupClaim().
		SetupSwapFailure(types.SwapSponsored, types.ErrUnauthorized)

	_, err := h.Saga.Upload(h.ctx, req)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	h.requireFailed(err, uploadcheckpoints.Swapping, uploadcheckpoints.BridgeClaimed)

	st := h.status(req)
	require.Equal(t, uploadcheckpoints.Failed, st.State)
	require.Equal(t, types.UploadRetryManual, st.Retry)
}

func TestClaimRetriesAllowListedFailures(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("claim retries", false)
	h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(false).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(false).
		SetupAttestation(false).
		SetupClaim(
			errors.New("MoveAbort in 0x26efee::complete_transfer: object does not exist"),
			errors.New("dry run failed: object does not exist"),
		).
		SetupSwap(types.SwapDirect).
		SetupEncode().
		SetupRegister().
		SetupDistribute().
		SetupCertify(false)

	_, err := h.Saga.Upload(h.ctx, req)
	require.NoError(t, err)

	st := h.status(req)
	require.Equal(t, uploadcheckpoints.Complete, st.Checkpoint)
	require.Equal(t, 3, st.Attempts[string(uploadcheckpoints.BridgeClaiming)])
}

func TestClaimDoesNotRetryUnknownFailures(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("claim fails", false)
	out := h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(false).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(false).
		SetupAttestation(false).
		SetupClaimFailure(errors.New("random unrelated failure"), 1).
		Output()

	_, err := h.Saga.Upload(h.ctx, req)
	require.ErrorContains(t, err, "random unrelated failure")
	uerr := h.requireFailed(err, uploadcheckpoints.BridgeClaiming, uploadcheckpoints.BridgeAttested)
	artifact, ok := uerr.Artifact.(types.BridgeTransferHandle)
	require.True(t, ok)
	require.Equal(t, out.Attestation, artifact.Attestation)

	st := h.status(req)
	require.Equal(t, uploadcheckpoints.Failed, st.State)
	require.Equal(t, 1, st.Attempts[string(uploadcheckpoints.BridgeClaiming)])
	require.Equal(t, 1, out.ClaimCalls)
}

func TestClaimGivesUpAfterMaxAttempts(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("claim exhausted", false)
	h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(false).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(false).
		SetupAttestation(false).
		SetupClaimFailure(errors.New("package upgrade pending"), 3)

	_, err := h.Saga.Upload(h.ctx, req)
	require.ErrorContains(t, err, "exhausted 3 attempts")
	h.requireFailed(err, uploadcheckpoints.BridgeClaiming, uploadcheckpoints.BridgeAttested)
	require.Equal(t, 3, h.status(req).Attempts[string(uploadcheckpoints.BridgeClaiming)])
}

func TestInsufficientFundsFailsBeforeBridging(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("poor", false)
	h.Stub.ForUpload(req).SetupQuote().SetupSponsorship(false)
	h.Stub.MockSourceLedger.EXPECT().Balance(gomock.Any(), testPayer).Return(types.MustParseAmount("9.99"), nil).MinTimes(1)

	_, err := h.Saga.Upload(h.ctx, req)
	require.ErrorIs(t, err, types.ErrInsufficientFunds)
	h.requireFailed(err, uploadcheckpoints.FeeCollecting, uploadcheckpoints.Quoted)
}

func TestCertifyFailsClosed(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("certify fails", true)
	ub := h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(false).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(false).
		SetupAttestation(false).
		SetupClaim().
		SetupSwap(types.SwapDirect).
		SetupEncode().
		SetupRegister().
		SetupDistribute().
		SetupCertifyStatus(types.TxStatusFailure, h.cfg.FinalizeMaxAttempts)
	out := ub.Output()

	_, err := h.Saga.Upload(h.ctx, req)
	require.ErrorIs(t, err, types.ErrTxFailed)
	h.requireFailed(err, uploadcheckpoints.Finalizing, uploadcheckpoints.BlobStored)

	st := h.status(req)
	require.Equal(t, uploadcheckpoints.BlobStored, st.Checkpoint)
	require.Equal(t, out.BlobObjectID, st.Blob.BlobObjectID)
	require.Empty(t, st.Blob.CertificationTxID)

	// resuming only retries certification
	ub.SetupCertify(false)
	blob, err := h.Saga.Resume(h.ctx, req.Digest())
	require.NoError(t, err)
	require.Equal(t, out.CertifyTxID, blob.CertificationTxID)
	require.Equal(t, uploadcheckpoints.Complete, h.status(req).Checkpoint)
}

func TestRegisterRejectsMismatchedBlobID(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("mismatch", false)
	h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(false).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(false).
		SetupAttestation(false).
		SetupClaim().
		SetupSwap(types.SwapDirect).
		SetupEncode()
	h.Stub.MockStorageFinalizer.EXPECT().LookupRegistration(gomock.Any(), gomock.Any()).Return(nil, nil)
	h.Stub.MockStorageFinalizer.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).Return(&types.Registration{
		TxResult:     types.TxResult{TxID: "register", Status: types.TxStatusSuccess},
		BlobID:       "someone-elses-blob",
		BlobObjectID: "0xobj",
	}, nil)

	_, err := h.Saga.Upload(h.ctx, req)
	require.ErrorContains(t, err, "does not match encoded blob id")
	require.Equal(t, uploadcheckpoints.Swapped, h.status(req).Checkpoint)
}

func TestRegisterAndCertifyAdoptLandedTransactions(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("lost responses", true)
	ub := h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(false).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(false).
		SetupAttestation(false).
		SetupClaim().
		SetupSwap(types.SwapDirect).
		SetupEncode()
	out := ub.Output()
	fin := h.Stub.MockStorageFinalizer

	var lookups []types.RegisterParams
	lookup := func(reg *types.Registration) func(context.Context, types.RegisterParams) (*types.Registration, error) {
		return func(_ context.Context, p types.RegisterParams) (*types.Registration, error) {
			lookups = append(lookups, p)
			return reg, nil
		}
	}
	gomock.InOrder(
		fin.EXPECT().LookupRegistration(gomock.Any(), gomock.Any()).DoAndReturn(lookup(nil)),
		fin.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("%w: response lost", types.ErrTransient)).Times(1),
		fin.EXPECT().LookupRegistration(gomock.Any(), gomock.Any()).DoAndReturn(lookup(&types.Registration{
			TxResult:     types.TxResult{TxID: out.RegisterTxID, Status: types.TxStatusSuccess},
			BlobID:       out.BlobID,
			BlobObjectID: out.BlobObjectID,
		})),
	)
	ub.SetupDistribute()
	gomock.InOrder(
		fin.EXPECT().LookupCertification(gomock.Any(), out.BlobObjectID).Return(nil, nil),
		fin.EXPECT().Certify(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("%w: response lost", types.ErrTransient)).Times(1),
		fin.EXPECT().LookupCertification(gomock.Any(), out.BlobObjectID).
			Return(&types.TxResult{TxID: out.CertifyTxID, Status: types.TxStatusSuccess}, nil),
	)

	blob, err := h.Saga.Upload(h.ctx, req)
	require.NoError(t, err)

	// a single blob object was registered and certified
	require.Equal(t, out.BlobObjectID, blob.BlobObjectID)
	require.Equal(t, out.RegisterTxID, blob.RegistrationTxID)
	require.Equal(t, out.CertifyTxID, blob.CertificationTxID)

	require.Len(t, lookups, 2)
	for _, p := range lookups {
		require.Equal(t, out.BlobID, p.BlobID)
		require.Equal(t, out.Receiver, p.Owner)
		require.Equal(t, req.Epochs(), p.Epochs)
		require.True(t, p.Deletable)
	}
}

func TestBlobIDIsDeterministic(t *testing.T) {
	upload := func(content string, deletable bool) (*types.FinalizedBlob, *types.RegisterParams, types.UploadRequest) {
		// a separate database and saga for every upload
		h := newHarness(t)
		req := h.newRequest(content, deletable)
		ub := h.Stub.ForUpload(req).
			SetupQuote().
			SetupSponsorship(false).
			SetupFee(types.MustParseAmount("1000")).
			SetupInitiate(false).
			SetupAttestation(false).
			SetupClaim().
			SetupSwap(types.SwapDirect)
		// the encoder derives the blob id from the content alone
		h.Stub.MockStorageFinalizer.EXPECT().Encode(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, content []byte) (*types.EncodedBlob, error) {
				sum := sha256.Sum256(content)
				return &types.EncodedBlob{
					BlobID:   "blob-" + hex.EncodeToString(sum[:8]),
					RootHash: sum[:],
					Plan:     types.ShardPlan{SliversByNode: map[string][]byte{"node-1": content}},
				}, nil
			}).AnyTimes()
		out := ub.SetupRegister().
			SetupDistribute().
			SetupCertify(false).
			Output()

		blob, err := h.Saga.Upload(h.ctx, req)
		require.NoError(t, err)
		return blob, out.Register, req
	}

	blob1, reg1, req1 := upload("same content", true)
	blob2, reg2, req2 := upload("same content", true)

	// the requests name different files holding the same content
	require.NotEqual(t, req1.FilePath(), req2.FilePath())
	require.Equal(t, req1.Digest(), req2.Digest())

	require.Equal(t, blob1.BlobID, blob2.BlobID)
	require.Equal(t, reg1.BlobID, reg2.BlobID)
	require.Equal(t, reg1.Epochs, reg2.Epochs)
	require.Equal(t, reg1.Deletable, reg2.Deletable)
	require.Equal(t, blob1.BlobID, reg1.BlobID)

	// the deletable flag is part of the upload identity
	blob3, reg3, req3 := upload("same content", false)
	require.NotEqual(t, req1.Digest(), req3.Digest())
	require.Equal(t, blob1.BlobID, blob3.BlobID)
	require.False(t, reg3.Deletable)
}

func TestCloseStopsUploadsAndRejectsNewOnes(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("closing", false)
	out := h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(false).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(true).
		Output()

	errs := make(chan error, 1)
	go func() {
		_, err := h.Saga.Upload(h.ctx, req)
		errs <- err
	}()
	<-out.InitiateStarted

	h.Saga.Close()

	select {
	case err := <-errs:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for upload to stop")
	}

	_, err := h.Saga.Resume(h.ctx, req.Digest())
	require.ErrorIs(t, err, ErrSagaClosed)

	other := h.newRequest("after close", false)
	_, err = h.Saga.Upload(h.ctx, other)
	require.ErrorIs(t, err, ErrSagaClosed)
}

func TestAttestationTimeout(t *testing.T) {
	clk := clock.NewMock()
	h := newHarness(t, withClock(clk))
	req := h.newRequest("no attestation", false)
	started := make(chan struct{})
	h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(false).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(false).
		SetupAttestationNever(started)

	errs := make(chan error, 1)
	go func() {
		_, err := h.Saga.Upload(h.ctx, req)
		errs <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for attestation wait to start")
	}
	clk.Add(h.cfg.AttestationTimeout)

	select {
	case err := <-errs:
		require.ErrorIs(t, err, types.ErrAttestationTimeout)
		h.requireFailed(err, uploadcheckpoints.BridgeAttesting, uploadcheckpoints.BridgeInitiated)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for upload to fail")
	}

	st := h.status(req)
	require.Equal(t, types.UploadRetryManual, st.Retry)
	require.Equal(t, types.BridgeInitiated, st.Bridge.Phase)
}

func TestCancelAndResume(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("cancel me", false)
	ub := h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(false).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(true)
	out := ub.Output()

	errs := make(chan error, 1)
	go func() {
		_, err := h.Saga.Upload(h.ctx, req)
		errs <- err
	}()
	<-out.InitiateStarted

	require.NoError(t, h.Saga.Cancel(h.ctx, req.Digest()))
	err := <-errs
	require.ErrorIs(t, err, context.Canceled)
	h.requireFailed(err, uploadcheckpoints.BridgeInitiating, uploadcheckpoints.FeeCollected)

	st := h.status(req)
	require.Equal(t, uploadcheckpoints.Failed, st.State)
	require.Equal(t, types.UploadRetryManual, st.Retry)

	require.ErrorIs(t, h.Saga.Cancel(h.ctx, req.Digest()), ErrUploadNotExecuting)

	// the bridge ledger holds a pending transfer: it is looked up before the
	// transfer is submitted again, and the fee is not collected twice
	h.Stub.MockBridge.EXPECT().LookupTransfer(gomock.Any(), testPayer, st.IdempotencyKey(uploadcheckpoints.BridgeInitiating)).Return(nil, nil)
	ub.SetupInitiate(false).
		SetupAttestation(false).
		SetupClaim().
		SetupSwap(types.SwapDirect).
		SetupEncode().
		SetupRegister().
		SetupDistribute().
		SetupCertify(false)

	_, err = h.Saga.Upload(h.ctx, req)
	require.NoError(t, err)

	st = h.status(req)
	require.Equal(t, uploadcheckpoints.Complete, st.Checkpoint)
	require.Equal(t, 2, st.Attempts[string(uploadcheckpoints.BridgeInitiating)])

	fees, err := h.Saga.FeesCollected(h.ctx)
	require.NoError(t, err)
	require.Equal(t, types.MustParseAmount("0.1"), fees)
}

func TestResumeFindsTransferFromPreviousRun(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("lost response", false)
	ub := h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(false).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiateFailure(errors.New("program rejected transfer"))
	out := ub.Output()

	_, err := h.Saga.Upload(h.ctx, req)
	require.ErrorContains(t, err, "program rejected transfer")
	h.requireFailed(err, uploadcheckpoints.BridgeInitiating, uploadcheckpoints.FeeCollected)

	// the transfer landed after all: it is adopted rather than resubmitted
	h.Stub.MockBridge.EXPECT().LookupTransfer(gomock.Any(), testPayer, gomock.Any()).Return(&types.BridgeTransferHandle{
		Phase:      types.BridgeInitiated,
		SourceTxID: out.SourceTxID,
		BridgeTxID: out.BridgeTxID,
	}, nil)
	ub.SetupAttestation(false).
		SetupClaim().
		SetupSwap(types.SwapDirect).
		SetupEncode().
		SetupRegister().
		SetupDistribute().
		SetupCertify(false)

	_, err = h.Saga.Resume(h.ctx, req.Digest())
	require.NoError(t, err)

	st := h.status(req)
	require.Equal(t, out.SourceTxID, st.Bridge.SourceTxID)
	require.Equal(t, types.MustParseAmount("9.9"), st.Bridge.Amount)
}

func TestResumeReconcilesFeeThatLandedAfterQuoteChanged(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("fee landed late", false)
	ub := h.Stub.ForUpload(req).SetupSponsorship(false)
	out := ub.Output()

	// the storage price moves between the two runs
	cost := func(storage string) *types.StorageCost {
		return &types.StorageCost{
			StorageCost:      types.MustParseAmount(storage),
			WriteCost:        types.MustParseAmount("3.985"),
			EncodedSizeBytes: req.FileSizeBytes() * 5,
		}
	}
	gomock.InOrder(
		h.Stub.MockQuoter.EXPECT().StorageCost(gomock.Any(), req.FileSizeBytes(), req.Epochs()).Return(cost("6"), nil).Times(1),
		h.Stub.MockQuoter.EXPECT().StorageCost(gomock.Any(), req.FileSizeBytes(), req.Epochs()).Return(cost("6.5"), nil).AnyTimes(),
	)

	ledger := h.Stub.MockSourceLedger
	ledger.EXPECT().Balance(gomock.Any(), testPayer).Return(types.MustParseAmount("1000"), nil).AnyTimes()
	ledger.EXPECT().BuildTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p types.TransferParams) (types.SigningRequest, error) {
			require.Equal(t, types.MustParseAmount("0.1"), p.Amount)
			return types.SigningRequest{Kind: types.SignLegacy, Payload: []byte(p.Memo)}, nil
		}).AnyTimes()
	ledger.EXPECT().SubmitAndConfirm(gomock.Any(), gomock.Any()).
		Return("", fmt.Errorf("%w: blockhash expired", types.ErrTransient)).Times(h.cfg.FeeMaxAttempts)
	gomock.InOrder(
		ledger.EXPECT().LookupTransfer(gomock.Any(), testPayer, gomock.Any()).Return(nil, nil).Times(h.cfg.FeeMaxAttempts-1),
		// the last submission landed after the first run gave up
		ledger.EXPECT().LookupTransfer(gomock.Any(), testPayer, gomock.Any()).
			Return(&types.TransferRecord{TxID: "fee-landed", Amount: types.MustParseAmount("0.1")}, nil).Times(1),
	)

	_, err := h.Saga.Upload(h.ctx, req)
	require.ErrorIs(t, err, types.ErrTransient)
	h.requireFailed(err, uploadcheckpoints.FeeCollecting, uploadcheckpoints.Quoted)

	st := h.status(req)
	entry, err := h.Saga.feeDB.ByKey(h.ctx, st.IdempotencyKey(uploadcheckpoints.FeeCollecting))
	require.NoError(t, err)
	require.Equal(t, db.LedgerPending, entry.Status)

	ub.SetupInitiate(false).
		SetupAttestation(false).
		SetupClaim().
		SetupSwap(types.SwapDirect).
		SetupEncode().
		SetupRegister().
		SetupDistribute().
		SetupCertify(false)

	_, err = h.Saga.Resume(h.ctx, req.Digest())
	require.NoError(t, err)

	// the landed fee is adopted with the quote it was paid against
	st = h.status(req)
	require.Equal(t, uploadcheckpoints.Complete, st.Checkpoint)
	require.Equal(t, types.MustParseAmount("10"), st.Quote.TotalCost)
	require.Equal(t, "fee-landed", st.Fee.SourceTxID)
	require.Equal(t, types.MustParseAmount("10"), st.Fee.AmountRequested())
	require.Equal(t, types.MustParseAmount("0.1"), st.Fee.AmountDebited())
	require.Equal(t, types.MustParseAmount("9.9"), out.Initiate.Amount.Amount())

	entry, err = h.Saga.feeDB.ByKey(h.ctx, st.IdempotencyKey(uploadcheckpoints.FeeCollecting))
	require.NoError(t, err)
	require.Equal(t, db.LedgerConfirmed, entry.Status)
	require.Equal(t, "fee-landed", entry.SourceTxID)

	fees, err := h.Saga.FeesCollected(h.ctx)
	require.NoError(t, err)
	require.Equal(t, types.MustParseAmount("0.1"), fees)
}

func TestResumeRequotesWhenFeeNeverLanded(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("fee never landed", false)
	ub := h.Stub.ForUpload(req).SetupSponsorship(false)
	out := ub.Output()

	cost := func(storage string) *types.StorageCost {
		return &types.StorageCost{
			StorageCost:      types.MustParseAmount(storage),
			WriteCost:        types.MustParseAmount("3.985"),
			EncodedSizeBytes: req.FileSizeBytes() * 5,
		}
	}
	gomock.InOrder(
		h.Stub.MockQuoter.EXPECT().StorageCost(gomock.Any(), req.FileSizeBytes(), req.Epochs()).Return(cost("6"), nil).Times(1),
		h.Stub.MockQuoter.EXPECT().StorageCost(gomock.Any(), req.FileSizeBytes(), req.Epochs()).Return(cost("6.5"), nil).AnyTimes(),
	)

	ledger := h.Stub.MockSourceLedger
	var transfers []types.Amount
	ledger.EXPECT().Balance(gomock.Any(), testPayer).Return(types.MustParseAmount("1000"), nil).AnyTimes()
	ledger.EXPECT().BuildTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p types.TransferParams) (types.SigningRequest, error) {
			transfers = append(transfers, p.Amount)
			return types.SigningRequest{Kind: types.SignLegacy, Payload: []byte(p.Memo)}, nil
		}).AnyTimes()
	ledger.EXPECT().LookupTransfer(gomock.Any(), testPayer, gomock.Any()).Return(nil, nil).AnyTimes()
	gomock.InOrder(
		ledger.EXPECT().SubmitAndConfirm(gomock.Any(), gomock.Any()).
			Return("", fmt.Errorf("%w: blockhash expired", types.ErrTransient)).Times(h.cfg.FeeMaxAttempts),
		ledger.EXPECT().SubmitAndConfirm(gomock.Any(), gomock.Any()).Return("fee-requoted", nil).Times(1),
	)

	_, err := h.Saga.Upload(h.ctx, req)
	require.ErrorIs(t, err, types.ErrTransient)

	ub.SetupInitiate(false).
		SetupAttestation(false).
		SetupClaim().
		SetupSwap(types.SwapDirect).
		SetupEncode().
		SetupRegister().
		SetupDistribute().
		SetupCertify(false)

	_, err = h.Saga.Resume(h.ctx, req.Digest())
	require.NoError(t, err)

	// nothing was paid, so the fee is taken from the refreshed quote
	st := h.status(req)
	require.Equal(t, types.MustParseAmount("10.5"), st.Quote.TotalCost)
	require.Equal(t, "fee-requoted", st.Fee.SourceTxID)
	require.Equal(t, types.MustParseAmount("0.105"), st.Fee.AmountDebited())
	require.Equal(t, types.MustParseAmount("10.395"), out.Initiate.Amount.Amount())
	require.Equal(t, types.MustParseAmount("0.105"), transfers[len(transfers)-1])
}

func TestUploadRejectsMissingFile(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("gone", false)
	require.NoError(t, os.Remove(req.FilePath()))

	_, err := h.Saga.Upload(h.ctx, req)
	require.ErrorIs(t, err, types.ErrValidation)

	// nothing was persisted
	_, err = h.Saga.Status(h.ctx, req.Digest())
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestChangedContentFailsFatally(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("original", false)
	h.Stub.ForUpload(req).SetupQuoteFailure(errors.New("oracle misconfigured"), 1)

	_, err := h.Saga.Upload(h.ctx, req)
	require.ErrorContains(t, err, "oracle misconfigured")
	require.Equal(t, types.UploadRetryManual, h.status(req).Retry)

	require.NoError(t, os.WriteFile(req.FilePath(), []byte("tampered"), 0644))
	_, err = h.Saga.Upload(h.ctx, req)
	require.ErrorIs(t, err, types.ErrValidation)
	require.Equal(t, types.UploadRetryFatal, h.status(req).Retry)

	_, err = h.Saga.Upload(h.ctx, req)
	require.ErrorIs(t, err, ErrUploadFailedFatal)
}

func TestStartResumesActiveUploads(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("resume on start", false)
	out := h.Stub.ForUpload(req).
		SetupEncode().
		SetupRegister().
		SetupDistribute().
		SetupCertify(false).
		Output()

	st := types.NewUploadState(req, "testnet")
	st.Receiver = out.Receiver
	st.Bridge = types.BridgeTransferHandle{Phase: types.BridgeClaimed, ClaimedAmount: types.MustParseAmount("9.9")}
	st.Swap = types.SwapOutcome{InputAmount: types.MustParseAmount("9.9"), OutputAmount: out.SwapOutput, TxID: out.SwapTxID}
	st.Checkpoint = uploadcheckpoints.Swapped
	st.State = uploadcheckpoints.Finalizing
	require.NoError(t, h.Saga.uploadsDB.Insert(h.ctx, st))

	require.NoError(t, h.Saga.Start())
	require.Eventually(t, func() bool {
		st, err := h.Saga.Status(h.ctx, req.Digest())
		return err == nil && st.Checkpoint == uploadcheckpoints.Complete
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSubscribeUpdates(t *testing.T) {
	h := newHarness(t)
	req := h.newRequest("subscribe", false)
	ub := h.Stub.ForUpload(req).
		SetupQuote().
		SetupSponsorship(false).
		SetupFee(types.MustParseAmount("1000")).
		SetupInitiate(true).
		SetupAttestation(false).
		SetupClaim().
		SetupSwap(types.SwapDirect).
		SetupEncode().
		SetupRegister().
		SetupDistribute().
		SetupCertify(false)

	errs := make(chan error, 1)
	go func() {
		_, err := h.Saga.Upload(h.ctx, req)
		errs <- err
	}()
	<-ub.Output().InitiateStarted

	sub, err := h.Saga.SubscribeUpdates(req.Digest())
	require.NoError(t, err)
	defer sub.Close() //nolint:errcheck

	h.Stub.UnblockInitiate(req.Digest())
	require.NoError(t, <-errs)

	var seen []uploadcheckpoints.Checkpoint
	timeout := time.After(5 * time.Second)
	for {
		select {
		case evt := <-sub.Out():
			st := evt.(types.UploadState)
			seen = append(seen, st.Checkpoint)
			if st.Checkpoint == uploadcheckpoints.Complete {
				require.Contains(t, seen, uploadcheckpoints.BridgeInitiated)
				require.Contains(t, seen, uploadcheckpoints.Swapped)
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for updates, saw %v", seen)
		}
	}
}

func TestQuoteIsCached(t *testing.T) {
	h := newHarness(t, withConfig(func(cfg *Config) {
		cfg.QuoteCacheTTL = time.Minute
	}))
	h.Stub.MockQuoter.EXPECT().StorageCost(gomock.Any(), uint64(1024), uint32(3)).Return(&types.StorageCost{
		StorageCost:      types.MustParseAmount("1"),
		WriteCost:        types.MustParseAmount("0.5"),
		EncodedSizeBytes: 5120,
	}, nil).Times(1)

	q, err := h.Saga.Quote(h.ctx, 1024, 3)
	require.NoError(t, err)
	require.Equal(t, types.MustParseAmount("1.515"), q.TotalCost)
	require.Equal(t, uint32(3), q.Epochs)

	cached, err := h.Saga.Quote(h.ctx, 1024, 3)
	require.NoError(t, err)
	require.Equal(t, q, cached)

	_, err = h.Saga.Quote(h.ctx, 0, 3)
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestQuoteRetriesTransientFailures(t *testing.T) {
	h := newHarness(t)
	gomock.InOrder(
		h.Stub.MockQuoter.EXPECT().StorageCost(gomock.Any(), uint64(10), uint32(1)).Return(nil, types.ErrTransient).Times(2),
		h.Stub.MockQuoter.EXPECT().StorageCost(gomock.Any(), uint64(10), uint32(1)).Return(&types.StorageCost{
			StorageCost: types.MustParseAmount("2"),
		}, nil),
	)

	q, err := h.Saga.Quote(h.ctx, 10, 1)
	require.NoError(t, err)
	require.Equal(t, types.MustParseAmount("2.015"), q.TotalCost)
}

func TestDelete(t *testing.T) {
	h := newHarness(t)
	ctx := h.ctx

	insert := func(content string, deletable bool) *types.UploadState {
		req := h.newRequest(content, deletable)
		st := types.NewUploadState(req, "testnet")
		st.Receiver = "0xreceiver-" + content
		st.Blob = types.FinalizedBlob{BlobID: "blob-" + content, BlobObjectID: "0xobj-" + content}
		st.Checkpoint = uploadcheckpoints.Complete
		st.State = uploadcheckpoints.Done
		require.NoError(t, h.Saga.uploadsDB.Insert(ctx, st))
		return st
	}
	deletable := insert("deletable", true)
	permanent := insert("permanent", false)

	t.Run("requires the uploader", func(t *testing.T) {
		_, err := h.Saga.Delete(ctx, deletable.Blob.BlobObjectID, "someone else")
		require.ErrorIs(t, err, types.ErrUnauthorized)
	})

	t.Run("rejects permanent blobs", func(t *testing.T) {
		_, err := h.Saga.Delete(ctx, permanent.Blob.BlobObjectID, testPayer)
		require.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("fails closed on a failed transaction", func(t *testing.T) {
		h.Stub.MockStorageFinalizer.EXPECT().Delete(gomock.Any(), deletable.Blob.BlobObjectID, deletable.Receiver, gomock.Any()).
			Return(&types.TxResult{TxID: "delete-1", Status: types.TxStatusFailure, Error: "EBlobNotDeletable"}, nil)
		_, err := h.Saga.Delete(ctx, deletable.Blob.BlobObjectID, testPayer)
		require.ErrorIs(t, err, types.ErrTxFailed)
	})

	t.Run("deletes", func(t *testing.T) {
		h.Stub.MockStorageFinalizer.EXPECT().Delete(gomock.Any(), deletable.Blob.BlobObjectID, deletable.Receiver, gomock.Any()).
			Return(&types.TxResult{TxID: "delete-2", Status: types.TxStatusSuccess}, nil)
		res, err := h.Saga.Delete(ctx, deletable.Blob.BlobObjectID, testPayer)
		require.NoError(t, err)
		require.Equal(t, "delete-2", res.TxID)
	})

	t.Run("unknown blob objects are owned by the derived receiver", func(t *testing.T) {
		receiver, err := h.Stub.Signers.DeriveReceiver(testPayer)
		require.NoError(t, err)
		h.Stub.MockStorageFinalizer.EXPECT().Delete(gomock.Any(), "0xelsewhere", receiver, gomock.Any()).
			Return(&types.TxResult{TxID: "delete-3", Status: types.TxStatusSuccess}, nil)
		_, err = h.Saga.Delete(ctx, "0xelsewhere", testPayer)
		require.NoError(t, err)
	})
}

func TestDownloadRequiresBlobID(t *testing.T) {
	h := newHarness(t)
	_, err := h.Saga.Download(h.ctx, "")
	require.ErrorIs(t, err, types.ErrValidation)

	h.Stub.MockBlobReader.EXPECT().ReadBlob(gomock.Any(), "blob-1").Return([]byte("content"), nil)
	content, err := h.Saga.Download(h.ctx, "blob-1")
	require.NoError(t, err)
	require.Equal(t, []byte("content"), content)
}
