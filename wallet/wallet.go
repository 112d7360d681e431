package wallet

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/mr-tron/base58"
	"golang.org/x/xerrors"

	"github.com/jhuhnke/solana-walrus/saga/types"
)

var log = logging.Logger("wallet")

const keyFileExt = ".json"

var ErrKeyNotFound = xerrors.New("key not found")

// Wallet holds payer keys, either in memory or in a directory of key files
// named after their address.
type Wallet struct {
	dir string

	lk   sync.Mutex
	keys map[string]*Key
}

var _ types.SignerResolver = (*Wallet)(nil)

// NewWallet opens the key directory dir, creating it if needed.
func NewWallet(dir string) (*Wallet, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, xerrors.Errorf("creating key directory: %w", err)
	}
	return &Wallet{
		dir:  dir,
		keys: make(map[string]*Key),
	}, nil
}

// KeyWallet is an in-memory wallet holding keys.
func KeyWallet(keys ...*Key) *Wallet {
	m := make(map[string]*Key)
	for _, k := range keys {
		m[k.SourceAddress()] = k
	}
	return &Wallet{keys: m}
}

// Import copies the key file at path into the wallet and returns the payer
// address.
func (w *Wallet) Import(path string) (string, error) {
	k, err := LoadKeyFile(path)
	if err != nil {
		return "", err
	}
	return w.Put(k)
}

// Generate creates a new payer key.
func (w *Wallet) Generate() (string, error) {
	k, err := GenerateKey()
	if err != nil {
		return "", err
	}
	return w.Put(k)
}

func (w *Wallet) Put(k *Key) (string, error) {
	w.lk.Lock()
	defer w.lk.Unlock()

	addr := k.SourceAddress()
	if w.dir != "" {
		if err := WriteKeyFile(filepath.Join(w.dir, addr+keyFileExt), k); err != nil {
			return "", err
		}
	}
	w.keys[addr] = k
	return addr, nil
}

// List returns the payer addresses in the wallet, sorted.
func (w *Wallet) List() ([]string, error) {
	w.lk.Lock()
	defer w.lk.Unlock()

	seen := make(map[string]struct{}, len(w.keys))
	for addr := range w.keys {
		seen[addr] = struct{}{}
	}
	// receiver keys are named by their 0x address
	if w.dir != "" {
		entries, err := os.ReadDir(w.dir)
		if err != nil {
			return nil, xerrors.Errorf("listing key directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), keyFileExt) {
				continue
			}
			seen[strings.TrimSuffix(e.Name(), keyFileExt)] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for addr := range seen {
		if strings.HasPrefix(addr, "0x") {
			continue
		}
		out = append(out, addr)
	}
	sort.Strings(out)
	return out, nil
}

func (w *Wallet) findKey(payer string) (*Key, error) {
	w.lk.Lock()
	defer w.lk.Unlock()

	if k, ok := w.keys[payer]; ok {
		return k, nil
	}
	if w.dir == "" {
		return nil, xerrors.Errorf("payer %s: %w", payer, ErrKeyNotFound)
	}
	if _, err := base58.Decode(payer); err != nil {
		return nil, xerrors.Errorf("%w: payer %q is not a base58 address", types.ErrValidation, payer)
	}

	k, err := LoadKeyFile(filepath.Join(w.dir, payer+keyFileExt))
	if err != nil {
		if xerrors.Is(err, os.ErrNotExist) {
			return nil, xerrors.Errorf("payer %s: %w", payer, ErrKeyNotFound)
		}
		return nil, err
	}
	if k.SourceAddress() != payer {
		return nil, xerrors.Errorf("key file for %s holds the key of %s", payer, k.SourceAddress())
	}
	w.keys[payer] = k
	return k, nil
}

func (w *Wallet) SourceSigner(payer string) (types.Signer, error) {
	k, err := w.findKey(payer)
	if err != nil {
		return nil, err
	}
	return &SourceSigner{key: k}, nil
}

// ImportReceiver copies a destination ledger key file into the wallet, so
// that uploads naming its address as receiver can be signed for.
func (w *Wallet) ImportReceiver(path string) (string, error) {
	k, err := LoadKeyFile(path)
	if err != nil {
		return "", err
	}

	w.lk.Lock()
	defer w.lk.Unlock()
	addr := k.DestinationAddress()
	if w.dir != "" {
		if err := WriteKeyFile(filepath.Join(w.dir, addr+keyFileExt), k); err != nil {
			return "", err
		}
	}
	w.keys[addr] = k
	return addr, nil
}

func (w *Wallet) findReceiverKey(receiver string) (*Key, error) {
	w.lk.Lock()
	defer w.lk.Unlock()

	if k, ok := w.keys[receiver]; ok {
		return k, nil
	}
	if w.dir == "" || !strings.HasPrefix(receiver, "0x") || strings.ContainsAny(receiver, `/\.`) {
		return nil, xerrors.Errorf("receiver %s: %w", receiver, ErrKeyNotFound)
	}
	k, err := LoadKeyFile(filepath.Join(w.dir, receiver+keyFileExt))
	if err != nil {
		if xerrors.Is(err, os.ErrNotExist) {
			return nil, xerrors.Errorf("receiver %s: %w", receiver, ErrKeyNotFound)
		}
		return nil, err
	}
	if k.DestinationAddress() != receiver {
		return nil, xerrors.Errorf("key file for %s holds the key of %s", receiver, k.DestinationAddress())
	}
	w.keys[receiver] = k
	return k, nil
}

// DestinationSigner returns the signer of receiver: the key derived from
// payer, or an imported receiver key.
func (w *Wallet) DestinationSigner(payer string, receiver string) (types.Signer, error) {
	k, err := w.findKey(payer)
	if err != nil {
		return nil, err
	}
	rk, err := k.DeriveReceiverKey()
	if err != nil {
		return nil, err
	}
	if rk.DestinationAddress() == receiver {
		return &DestinationSigner{key: rk}, nil
	}

	rk, err = w.findReceiverKey(receiver)
	if err != nil {
		log.Warnw("no key for receiver", "payer", payer, "receiver", receiver, "err", err)
		return nil, xerrors.Errorf("%w: no key for receiver %s of payer %s", types.ErrUnauthorized, receiver, payer)
	}
	return &DestinationSigner{key: rk}, nil
}

func (w *Wallet) DeriveReceiver(payer string) (string, error) {
	k, err := w.findKey(payer)
	if err != nil {
		return "", err
	}
	rk, err := k.DeriveReceiverKey()
	if err != nil {
		return "", err
	}
	return rk.DestinationAddress(), nil
}
