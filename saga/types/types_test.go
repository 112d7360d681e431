package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

func TestSplitFee(t *testing.T) {
	tcs := []struct {
		name      string
		requested string
		percent   string
		fee       string
		remaining string
	}{{
		name:      "sponsored tier",
		requested: "10",
		percent:   "0.01",
		fee:       "0.1",
		remaining: "9.9",
	}, {
		name:      "unsponsored tier",
		requested: "10",
		percent:   "0.02",
		fee:       "0.2",
		remaining: "9.8",
	}, {
		name:      "rounds fee down to the smallest unit",
		requested: "0.000000007",
		percent:   "0.5",
		fee:       "0.000000003",
		remaining: "0.000000004",
	}, {
		name:      "zero fee",
		requested: "1.5",
		percent:   "0",
		fee:       "0",
		remaining: "1.5",
	}}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			pct, err := ParseFeePercent(tc.percent)
			require.NoError(t, err)
			requested := MustParseAmount(tc.requested)

			out, err := SplitFee(requested, pct)
			require.NoError(t, err)
			require.Equal(t, MustParseAmount(tc.fee), out.AmountDebited())
			require.Equal(t, MustParseAmount(tc.remaining), out.RemainingForBridge().Amount())
			require.Equal(t, requested, out.AmountDebited()+out.RemainingForBridge().Amount())
		})
	}
}

func TestSplitFeeNeverDrifts(t *testing.T) {
	pct, err := ParseFeePercent("0.0137")
	require.NoError(t, err)
	for requested := Amount(1); requested < 5_000_000; requested += 9973 {
		out, err := SplitFee(requested, pct)
		require.NoError(t, err)
		require.Equal(t, requested, out.AmountDebited()+out.RemainingForBridge().Amount())
	}
}

func TestParseFeePercent(t *testing.T) {
	_, err := ParseFeePercent("1")
	require.Error(t, err)
	_, err = ParseFeePercent("-0.01")
	require.Error(t, err)
	_, err = ParseFeePercent("abc")
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount("9.9")
	require.NoError(t, err)
	require.EqualValues(t, 9_900_000_000, a)
	require.Equal(t, "9.9", a.String())

	_, err = ParseAmount("0.0000000001")
	require.Error(t, err)
	_, err = ParseAmount("-1")
	require.Error(t, err)
}

func TestUploadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello walrus"), 0644))

	req, err := NewUploadRequestFromFile(path, 3, true, "payer", "")
	require.NoError(t, err)
	require.EqualValues(t, 12, req.FileSizeBytes())
	require.Equal(t, path, req.FilePath())

	expected, err := multihash.Sum([]byte("hello walrus"), multihash.SHA2_256, -1)
	require.NoError(t, err)
	require.Equal(t, expected, req.FileHash())

	// the digest depends on content and registration parameters only
	otherPath := filepath.Join(t.TempDir(), "copy.bin")
	require.NoError(t, os.WriteFile(otherPath, []byte("hello walrus"), 0644))
	same, err := NewUploadRequestFromFile(otherPath, 3, true, "payer", "")
	require.NoError(t, err)
	require.Equal(t, req.Digest(), same.Digest())

	notDeletable, err := NewUploadRequestFromFile(path, 3, false, "payer", "")
	require.NoError(t, err)
	require.NotEqual(t, req.Digest(), notDeletable.Digest())

	// mutating the returned hash does not change the request
	h := req.FileHash()
	h[len(h)-1] ^= 0xff
	require.Equal(t, expected, req.FileHash())

	require.NotEqual(t, req.IdempotencyKey("FEE_COLLECTING"), req.IdempotencyKey("BRIDGE_INITIATING"))
}

func TestUploadRequestValidation(t *testing.T) {
	_, err := NewUploadRequestFromFile(filepath.Join(t.TempDir(), "missing"), 3, true, "payer", "")
	require.ErrorIs(t, err, ErrValidation)

	hash, err := multihash.Sum([]byte("x"), multihash.SHA2_256, -1)
	require.NoError(t, err)
	valid := UploadParams{FilePath: "f", FileHash: hash, FileSizeBytes: 1, Epochs: 1, Payer: "p"}

	tcs := map[string]func(p *UploadParams){
		"no epochs": func(p *UploadParams) { p.Epochs = 0 },
		"empty":     func(p *UploadParams) { p.FileSizeBytes = 0 },
		"no payer":  func(p *UploadParams) { p.Payer = "" },
		"bad hash":  func(p *UploadParams) { p.FileHash = []byte{1, 2, 3} },
	}
	for name, mutate := range tcs {
		t.Run(name, func(t *testing.T) {
			p := valid
			mutate(&p)
			_, err := NewUploadRequest(p)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestBridgeHandleAdvance(t *testing.T) {
	h := BridgeTransferHandle{}
	require.Error(t, h.Advance(BridgeTransferHandle{Phase: BridgeAttested, Attestation: []byte{1}}))
	require.Error(t, h.Advance(BridgeTransferHandle{Phase: BridgeInitiated}))

	next := BridgeTransferHandle{Phase: BridgeInitiated, SourceTxID: "tx"}
	require.NoError(t, h.Advance(next))
	require.Error(t, next.Advance(next))
}

func TestTxResultCheck(t *testing.T) {
	require.NoError(t, TxResult{TxID: "a", Status: TxStatusSuccess}.Check())
	err := TxResult{TxID: "a", Status: TxStatusFailure}.Check()
	require.ErrorIs(t, err, ErrTxFailed)
}
