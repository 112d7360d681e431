package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// destination ledger signature scheme flag for ed25519
const ed25519Flag = 0x00

// receiverDomain separates the receiver seed from any other use of the
// payer's secret
var receiverDomain = []byte("walrus-bridge/receiver/v1")

// Key is an ed25519 keypair. The same key type is used on both ledgers, only
// the address encoding differs.
type Key struct {
	PrivateKey ed25519.PrivateKey
}

// NewKey builds a key from a 64 byte secret key (seed followed by public key)
// as written in source ledger key files.
func NewKey(secret []byte) (*Key, error) {
	if len(secret) != ed25519.PrivateKeySize {
		return nil, xerrors.Errorf("secret key is %d bytes, expected %d", len(secret), ed25519.PrivateKeySize)
	}
	priv := ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize])
	if !priv.Equal(ed25519.PrivateKey(secret)) {
		return nil, xerrors.New("secret key does not match its public key")
	}
	return &Key{PrivateKey: priv}, nil
}

func GenerateKey() (*Key, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, xerrors.Errorf("generating key: %w", err)
	}
	return &Key{PrivateKey: priv}, nil
}

func (k *Key) PublicKey() ed25519.PublicKey {
	return k.PrivateKey.Public().(ed25519.PublicKey)
}

// SourceAddress is the base58 encoded public key.
func (k *Key) SourceAddress() string {
	return base58.Encode(k.PublicKey())
}

// DestinationAddress is the 0x prefixed blake2b-256 hash of the scheme flag
// and the public key.
func (k *Key) DestinationAddress() string {
	buf := append([]byte{ed25519Flag}, k.PublicKey()...)
	h := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(h[:])
}

// DeriveReceiverKey returns the destination ledger key owned by this payer
// key. The derivation is deterministic, so the receiver of every upload made
// by a payer can be recovered from the payer key file alone.
func (k *Key) DeriveReceiverKey() (*Key, error) {
	mac, err := blake2b.New256(receiverDomain)
	if err != nil {
		return nil, xerrors.Errorf("creating receiver derivation hash: %w", err)
	}
	mac.Write(k.PrivateKey.Seed())
	seed := mac.Sum(nil)
	return &Key{PrivateKey: ed25519.NewKeyFromSeed(seed)}, nil
}

// LoadKeyFile reads a source ledger key file: a JSON array of the 64 bytes
// of the secret key.
func LoadKeyFile(path string) (*Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("reading key file: %w", err)
	}
	k, err := ParseKey(data)
	if err != nil {
		return nil, xerrors.Errorf("key file %s: %w", path, err)
	}
	return k, nil
}

// ParseKey parses a secret key exported as a JSON array of bytes, or as a
// base58 string.
func ParseKey(data []byte) (*Key, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "[") {
		secret, err := base58.Decode(trimmed)
		if err != nil {
			return nil, xerrors.Errorf("parsing base58 secret key: %w", err)
		}
		return NewKey(secret)
	}

	var ints []int
	if err := json.Unmarshal([]byte(trimmed), &ints); err != nil {
		return nil, xerrors.Errorf("parsing secret key: %w", err)
	}
	secret := make([]byte, 0, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("byte %d out of range: %d", i, v)
		}
		secret = append(secret, byte(v))
	}
	return NewKey(secret)
}

// WriteKeyFile writes k in the source ledger key file format, readable only
// by the owner.
func WriteKeyFile(path string, k *Key) error {
	ints := make([]int, len(k.PrivateKey))
	for i, b := range k.PrivateKey {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return xerrors.Errorf("writing key file: %w", err)
	}
	return nil
}
