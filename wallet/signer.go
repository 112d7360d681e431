package wallet

import (
	"context"
	"crypto/ed25519"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"

	"github.com/jhuhnke/solana-walrus/saga/types"
)

// SourceSigner signs source ledger transactions.
type SourceSigner struct {
	key *Key
}

var _ types.Signer = (*SourceSigner)(nil)

func (s *SourceSigner) Address() string {
	return s.key.SourceAddress()
}

// Sign returns the wire encoded transaction: a signature count of one, the
// signature, then the message.
func (s *SourceSigner) Sign(_ context.Context, req types.SigningRequest) ([]byte, error) {
	switch req.Kind {
	case types.SignRawBytes:
		return append([]byte(nil), req.Payload...), nil
	case types.SignLegacy, types.SignVersioned:
		if len(req.Payload) == 0 {
			return nil, xerrors.Errorf("%w: empty %s message", types.ErrValidation, req.Kind)
		}
		// versioned messages carry their version prefix in the payload and
		// are signed with it
		sig := ed25519.Sign(s.key.PrivateKey, req.Payload)
		out := make([]byte, 0, 1+len(sig)+len(req.Payload))
		out = append(out, 1)
		out = append(out, sig...)
		return append(out, req.Payload...), nil
	default:
		return nil, xerrors.Errorf("unsupported signing request %s", req.Kind)
	}
}

// intent prefix of a destination ledger transaction: scope, version, app id
var txIntent = []byte{0, 0, 0}

// DestinationSigner signs destination ledger transactions. The signature is
// the scheme flag, the signature over the blake2b-256 digest of the intent
// message, then the public key.
type DestinationSigner struct {
	key *Key
}

var _ types.Signer = (*DestinationSigner)(nil)

func (s *DestinationSigner) Address() string {
	return s.key.DestinationAddress()
}

func (s *DestinationSigner) Sign(_ context.Context, req types.SigningRequest) ([]byte, error) {
	switch req.Kind {
	case types.SignRawBytes:
		return append([]byte(nil), req.Payload...), nil
	case types.SignLegacy, types.SignVersioned:
	default:
		return nil, xerrors.Errorf("unsupported signing request %s", req.Kind)
	}
	if len(req.Payload) == 0 {
		return nil, xerrors.Errorf("%w: empty transaction", types.ErrValidation)
	}

	msg := append(append([]byte(nil), txIntent...), req.Payload...)
	digest := blake2b.Sum256(msg)
	sig := ed25519.Sign(s.key.PrivateKey, digest[:])

	out := make([]byte, 0, 1+len(sig)+ed25519.PublicKeySize)
	out = append(out, ed25519Flag)
	out = append(out, sig...)
	return append(out, s.key.PublicKey()...), nil
}

// VerifyDestinationSignature checks a signature produced by DestinationSigner.
func VerifyDestinationSignature(payload []byte, signature []byte) (bool, error) {
	if len(signature) != 1+ed25519.SignatureSize+ed25519.PublicKeySize || signature[0] != ed25519Flag {
		return false, xerrors.New("malformed signature")
	}
	sig := signature[1 : 1+ed25519.SignatureSize]
	pub := ed25519.PublicKey(signature[1+ed25519.SignatureSize:])
	digest := blake2b.Sum256(append(append([]byte(nil), txIntent...), payload...))
	return ed25519.Verify(pub, digest[:], sig), nil
}
