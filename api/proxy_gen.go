package api

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/jhuhnke/solana-walrus/saga/types"
)

var ErrNotSupported = xerrors.New("method not supported")

type GatewayStruct struct {
	Internal GatewayMethods
}

type GatewayMethods struct {
	Version func(p0 context.Context) (string, error) `perm:"read"`

	SourceBalance func(p0 context.Context, p1 string) (types.Amount, error) `perm:"read"`

	SourceBuildTransfer func(p0 context.Context, p1 TransferRequest) (*UnsignedTx, error) `perm:"write"`

	SourceSubmit func(p0 context.Context, p1 []byte) (string, error) `perm:"write"`

	SourceFindTransfer func(p0 context.Context, p1 string, p2 string) (*types.TransferRecord, error) `perm:"read"`

	BridgeBuildTransfer func(p0 context.Context, p1 BridgeTransferRequest) (*UnsignedTx, error) `perm:"write"`

	BridgeSubmit func(p0 context.Context, p1 []byte) (*BridgeTransfer, error) `perm:"write"`

	BridgeFindTransfer func(p0 context.Context, p1 string, p2 string) (*BridgeTransfer, error) `perm:"read"`

	BridgeAttestation func(p0 context.Context, p1 string) (*Attestation, error) `perm:"read"`

	BridgeBuildClaim func(p0 context.Context, p1 ClaimRequest) (*UnsignedTx, error) `perm:"write"`

	SwapSponsoredRoute func(p0 context.Context, p1 SwapRequest) (bool, error) `perm:"read"`

	SwapBuild func(p0 context.Context, p1 SwapRequest) (*UnsignedTx, error) `perm:"write"`

	DestinationExecute func(p0 context.Context, p1 []byte, p2 []byte) (*TxReceipt, error) `perm:"write"`

	StorageCost func(p0 context.Context, p1 uint64, p2 uint32) (*types.StorageCost, error) `perm:"read"`

	BlobEncode func(p0 context.Context, p1 []byte) (*types.EncodedBlob, error) `perm:"read"`

	BlobBuildRegister func(p0 context.Context, p1 RegisterRequest) (*UnsignedTx, error) `perm:"write"`

	BlobFindRegistration func(p0 context.Context, p1 types.RegisterParams) (*types.Registration, error) `perm:"read"`

	BlobStore func(p0 context.Context, p1 string, p2 types.ShardPlan) ([]types.Confirmation, error) `perm:"write"`

	BlobBuildCertify func(p0 context.Context, p1 CertifyRequest) (*UnsignedTx, error) `perm:"write"`

	BlobFindCertification func(p0 context.Context, p1 string) (*types.TxResult, error) `perm:"read"`

	BlobBuildDelete func(p0 context.Context, p1 string, p2 string) (*UnsignedTx, error) `perm:"write"`

	BlobRead func(p0 context.Context, p1 string) ([]byte, error) `perm:"read"`

	BlobAttributes func(p0 context.Context, p1 string) (map[string]string, error) `perm:"read"`
}

type GatewayStub struct {
}

func (s *GatewayStruct) Version(p0 context.Context) (string, error) {
	if s.Internal.Version == nil {
		return "", ErrNotSupported
	}
	return s.Internal.Version(p0)
}

func (s *GatewayStub) Version(p0 context.Context) (string, error) {
	return "", ErrNotSupported
}

func (s *GatewayStruct) SourceBalance(p0 context.Context, p1 string) (types.Amount, error) {
	if s.Internal.SourceBalance == nil {
		return 0, ErrNotSupported
	}
	return s.Internal.SourceBalance(p0, p1)
}

func (s *GatewayStub) SourceBalance(p0 context.Context, p1 string) (types.Amount, error) {
	return 0, ErrNotSupported
}

func (s *GatewayStruct) SourceBuildTransfer(p0 context.Context, p1 TransferRequest) (*UnsignedTx, error) {
	if s.Internal.SourceBuildTransfer == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.SourceBuildTransfer(p0, p1)
}

func (s *GatewayStub) SourceBuildTransfer(p0 context.Context, p1 TransferRequest) (*UnsignedTx, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) SourceSubmit(p0 context.Context, p1 []byte) (string, error) {
	if s.Internal.SourceSubmit == nil {
		return "", ErrNotSupported
	}
	return s.Internal.SourceSubmit(p0, p1)
}

func (s *GatewayStub) SourceSubmit(p0 context.Context, p1 []byte) (string, error) {
	return "", ErrNotSupported
}

func (s *GatewayStruct) SourceFindTransfer(p0 context.Context, p1 string, p2 string) (*types.TransferRecord, error) {
	if s.Internal.SourceFindTransfer == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.SourceFindTransfer(p0, p1, p2)
}

func (s *GatewayStub) SourceFindTransfer(p0 context.Context, p1 string, p2 string) (*types.TransferRecord, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BridgeBuildTransfer(p0 context.Context, p1 BridgeTransferRequest) (*UnsignedTx, error) {
	if s.Internal.BridgeBuildTransfer == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BridgeBuildTransfer(p0, p1)
}

func (s *GatewayStub) BridgeBuildTransfer(p0 context.Context, p1 BridgeTransferRequest) (*UnsignedTx, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BridgeSubmit(p0 context.Context, p1 []byte) (*BridgeTransfer, error) {
	if s.Internal.BridgeSubmit == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BridgeSubmit(p0, p1)
}

func (s *GatewayStub) BridgeSubmit(p0 context.Context, p1 []byte) (*BridgeTransfer, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BridgeFindTransfer(p0 context.Context, p1 string, p2 string) (*BridgeTransfer, error) {
	if s.Internal.BridgeFindTransfer == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BridgeFindTransfer(p0, p1, p2)
}

func (s *GatewayStub) BridgeFindTransfer(p0 context.Context, p1 string, p2 string) (*BridgeTransfer, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BridgeAttestation(p0 context.Context, p1 string) (*Attestation, error) {
	if s.Internal.BridgeAttestation == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BridgeAttestation(p0, p1)
}

func (s *GatewayStub) BridgeAttestation(p0 context.Context, p1 string) (*Attestation, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BridgeBuildClaim(p0 context.Context, p1 ClaimRequest) (*UnsignedTx, error) {
	if s.Internal.BridgeBuildClaim == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BridgeBuildClaim(p0, p1)
}

func (s *GatewayStub) BridgeBuildClaim(p0 context.Context, p1 ClaimRequest) (*UnsignedTx, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) SwapSponsoredRoute(p0 context.Context, p1 SwapRequest) (bool, error) {
	if s.Internal.SwapSponsoredRoute == nil {
		return false, ErrNotSupported
	}
	return s.Internal.SwapSponsoredRoute(p0, p1)
}

func (s *GatewayStub) SwapSponsoredRoute(p0 context.Context, p1 SwapRequest) (bool, error) {
	return false, ErrNotSupported
}

func (s *GatewayStruct) SwapBuild(p0 context.Context, p1 SwapRequest) (*UnsignedTx, error) {
	if s.Internal.SwapBuild == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.SwapBuild(p0, p1)
}

func (s *GatewayStub) SwapBuild(p0 context.Context, p1 SwapRequest) (*UnsignedTx, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) DestinationExecute(p0 context.Context, p1 []byte, p2 []byte) (*TxReceipt, error) {
	if s.Internal.DestinationExecute == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.DestinationExecute(p0, p1, p2)
}

func (s *GatewayStub) DestinationExecute(p0 context.Context, p1 []byte, p2 []byte) (*TxReceipt, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) StorageCost(p0 context.Context, p1 uint64, p2 uint32) (*types.StorageCost, error) {
	if s.Internal.StorageCost == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.StorageCost(p0, p1, p2)
}

func (s *GatewayStub) StorageCost(p0 context.Context, p1 uint64, p2 uint32) (*types.StorageCost, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BlobEncode(p0 context.Context, p1 []byte) (*types.EncodedBlob, error) {
	if s.Internal.BlobEncode == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BlobEncode(p0, p1)
}

func (s *GatewayStub) BlobEncode(p0 context.Context, p1 []byte) (*types.EncodedBlob, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BlobBuildRegister(p0 context.Context, p1 RegisterRequest) (*UnsignedTx, error) {
	if s.Internal.BlobBuildRegister == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BlobBuildRegister(p0, p1)
}

func (s *GatewayStub) BlobBuildRegister(p0 context.Context, p1 RegisterRequest) (*UnsignedTx, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BlobFindRegistration(p0 context.Context, p1 types.RegisterParams) (*types.Registration, error) {
	if s.Internal.BlobFindRegistration == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BlobFindRegistration(p0, p1)
}

func (s *GatewayStub) BlobFindRegistration(p0 context.Context, p1 types.RegisterParams) (*types.Registration, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BlobStore(p0 context.Context, p1 string, p2 types.ShardPlan) ([]types.Confirmation, error) {
	if s.Internal.BlobStore == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BlobStore(p0, p1, p2)
}

func (s *GatewayStub) BlobStore(p0 context.Context, p1 string, p2 types.ShardPlan) ([]types.Confirmation, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BlobBuildCertify(p0 context.Context, p1 CertifyRequest) (*UnsignedTx, error) {
	if s.Internal.BlobBuildCertify == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BlobBuildCertify(p0, p1)
}

func (s *GatewayStub) BlobBuildCertify(p0 context.Context, p1 CertifyRequest) (*UnsignedTx, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BlobFindCertification(p0 context.Context, p1 string) (*types.TxResult, error) {
	if s.Internal.BlobFindCertification == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BlobFindCertification(p0, p1)
}

func (s *GatewayStub) BlobFindCertification(p0 context.Context, p1 string) (*types.TxResult, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BlobBuildDelete(p0 context.Context, p1 string, p2 string) (*UnsignedTx, error) {
	if s.Internal.BlobBuildDelete == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BlobBuildDelete(p0, p1, p2)
}

func (s *GatewayStub) BlobBuildDelete(p0 context.Context, p1 string, p2 string) (*UnsignedTx, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BlobRead(p0 context.Context, p1 string) ([]byte, error) {
	if s.Internal.BlobRead == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BlobRead(p0, p1)
}

func (s *GatewayStub) BlobRead(p0 context.Context, p1 string) ([]byte, error) {
	return nil, ErrNotSupported
}

func (s *GatewayStruct) BlobAttributes(p0 context.Context, p1 string) (map[string]string, error) {
	if s.Internal.BlobAttributes == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.BlobAttributes(p0, p1)
}

func (s *GatewayStub) BlobAttributes(p0 context.Context, p1 string) (map[string]string, error) {
	return nil, ErrNotSupported
}

var _ Gateway = new(GatewayStruct)
var _ Gateway = new(GatewayStub)
