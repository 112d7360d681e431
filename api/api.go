package api

import (
	"context"

	"github.com/jhuhnke/solana-walrus/saga/types"
)

//                       MODIFYING THE API INTERFACE
//
// When adding / changing methods in this file:
// * Do the change here
// * Add the method to GatewayStruct in proxy_gen.go, with the same perm tag
// * Adjust the adapters in gateway/

// Gateway is the relayer service that fronts the source ledger, the bridge,
// the swap aggregators and the storage network. Transactions are built by
// the gateway and signed locally, keys never leave the client.
type Gateway interface {
	// MethodGroup: Common
	Version(context.Context) (string, error) //perm:read

	// MethodGroup: Source
	SourceBalance(ctx context.Context, address string) (types.Amount, error)       //perm:read
	SourceBuildTransfer(ctx context.Context, req TransferRequest) (*UnsignedTx, error) //perm:write
	// SourceSubmit submits a signed transaction and waits for its confirmation
	SourceSubmit(ctx context.Context, signed []byte) (string, error) //perm:write
	// SourceFindTransfer returns the confirmed transfer from an address that
	// carries memo, or nil
	SourceFindTransfer(ctx context.Context, from string, memo string) (*types.TransferRecord, error) //perm:read

	// MethodGroup: Bridge
	BridgeBuildTransfer(ctx context.Context, req BridgeTransferRequest) (*UnsignedTx, error) //perm:write
	// BridgeSubmit returns NotAcceptedError if the transfer was rejected
	// before the source ledger accepted it
	BridgeSubmit(ctx context.Context, signed []byte) (*BridgeTransfer, error)                      //perm:write
	BridgeFindTransfer(ctx context.Context, source string, memo string) (*BridgeTransfer, error) //perm:read
	// BridgeAttestation returns nil until the guardians have signed the transfer
	BridgeAttestation(ctx context.Context, sourceTxID string) (*Attestation, error) //perm:read
	BridgeBuildClaim(ctx context.Context, req ClaimRequest) (*UnsignedTx, error)     //perm:write

	// MethodGroup: Swap
	SwapSponsoredRoute(ctx context.Context, req SwapRequest) (bool, error) //perm:read
	// SwapBuild returns RouteUnavailableError if no route exists
	SwapBuild(ctx context.Context, req SwapRequest) (*UnsignedTx, error) //perm:write

	// MethodGroup: Destination
	DestinationExecute(ctx context.Context, tx []byte, signature []byte) (*TxReceipt, error) //perm:write

	// MethodGroup: Storage
	StorageCost(ctx context.Context, sizeBytes uint64, epochs uint32) (*types.StorageCost, error) //perm:read
	BlobEncode(ctx context.Context, content []byte) (*types.EncodedBlob, error)                     //perm:read
	BlobBuildRegister(ctx context.Context, req RegisterRequest) (*UnsignedTx, error)                //perm:write
	// BlobFindRegistration returns the blob object registered by p.Owner for
	// p.BlobID with the same epochs and deletable flag, or nil
	BlobFindRegistration(ctx context.Context, p types.RegisterParams) (*types.Registration, error) //perm:read
	// BlobStore sends the slivers to the storage nodes and returns their
	// confirmations
	BlobStore(ctx context.Context, blobObjectID string, plan types.ShardPlan) ([]types.Confirmation, error) //perm:write
	BlobBuildCertify(ctx context.Context, req CertifyRequest) (*UnsignedTx, error)                         //perm:write
	// BlobFindCertification returns the transaction that certified the blob
	// object, or nil
	BlobFindCertification(ctx context.Context, blobObjectID string) (*types.TxResult, error) //perm:read
	BlobBuildDelete(ctx context.Context, blobObjectID string, owner string) (*UnsignedTx, error)           //perm:write
	BlobRead(ctx context.Context, blobID string) ([]byte, error)                                           //perm:read
	BlobAttributes(ctx context.Context, blobObjectID string) (map[string]string, error)                    //perm:read
}
