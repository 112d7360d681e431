package types

import (
	"context"
	"fmt"
)

// SigningKind says how a transaction payload must be signed. It is decided
// by the adapter that builds the transaction.
type SigningKind int

const (
	// SignLegacy is a legacy source ledger transaction message: the signer
	// signs the message bytes and the signature is prepended to the message.
	SignLegacy SigningKind = iota + 1
	// SignVersioned is a versioned transaction message: the signer signs the
	// message bytes including the version prefix.
	SignVersioned
	// SignRawBytes is an already signed transaction that is passed through.
	SignRawBytes
)

func (k SigningKind) String() string {
	switch k {
	case SignLegacy:
		return "legacy"
	case SignVersioned:
		return "versioned"
	case SignRawBytes:
		return "raw"
	default:
		return fmt.Sprintf("SigningKind(%d)", int(k))
	}
}

type SigningRequest struct {
	Kind    SigningKind
	Payload []byte
}

// Signer signs transactions on behalf of one address.
type Signer interface {
	Address() string
	Sign(ctx context.Context, req SigningRequest) ([]byte, error)
}

// SignerResolver resolves the signers used by an upload: the payer's signer
// on the source ledger and the receiver's signer on the destination ledger.
type SignerResolver interface {
	SourceSigner(payer string) (Signer, error)
	DestinationSigner(payer string, receiver string) (Signer, error)
	// DeriveReceiver returns the destination address used for payer when the
	// request does not name one
	DeriveReceiver(payer string) (string, error)
}
