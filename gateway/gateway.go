package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/filecoin-project/go-jsonrpc"
	logging "github.com/ipfs/go-log/v2"

	"github.com/jhuhnke/solana-walrus/api"
	"github.com/jhuhnke/solana-walrus/saga"
	"github.com/jhuhnke/solana-walrus/saga/types"
)

var log = logging.Logger("gateway")

type Config struct {
	// Coin type of the bridged asset on the destination ledger, used to read
	// the claimed amount from the claim's balance changes
	BridgedToken string
	StorageToken string
	// How often the bridge is asked whether a transfer was attested
	AttestationPollInterval time.Duration
}

// Gateway adapts the gateway JSON-RPC API to the collaborators of the saga.
// Transactions are built by the gateway, signed with the signer passed by
// the saga and submitted back to the gateway.
type Gateway struct {
	api   api.Gateway
	cfg   Config
	clock clock.Clock
}

type Option func(*Gateway)

func WithClock(clk clock.Clock) Option {
	return func(g *Gateway) {
		g.clock = clk
	}
}

func New(a api.Gateway, cfg Config, opts ...Option) *Gateway {
	if cfg.AttestationPollInterval <= 0 {
		cfg.AttestationPollInterval = 5 * time.Second
	}
	g := &Gateway{api: a, cfg: cfg, clock: clock.New()}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Clients returns the saga collaborators backed by the gateway.
func (g *Gateway) Clients(signers types.SignerResolver) saga.Clients {
	storage := &Storage{g: g}
	swap := &SwapRouter{g: g}
	return saga.Clients{
		Quoter:      storage,
		Sponsorship: swap,
		Ledger:      g.SourceLedger(),
		Bridge:      &Bridge{g: g},
		Swap:        swap,
		Finalizer:   storage,
		Reader:      storage,
		Signers:     signers,
	}
}

func (g *Gateway) SourceLedger() *SourceLedger {
	return &SourceLedger{g: g}
}

// execute signs a destination ledger transaction built by the gateway and
// executes it.
func (g *Gateway) execute(ctx context.Context, tx *api.UnsignedTx, signer types.Signer) (*api.TxReceipt, error) {
	if tx == nil {
		return nil, errors.New("gateway built no transaction")
	}
	sig, err := signer.Sign(ctx, signingRequest(tx))
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	r, err := g.api.DestinationExecute(ctx, tx.Message, sig)
	if err != nil {
		return nil, mapErr(err)
	}
	if r == nil {
		return nil, errors.New("gateway returned no receipt")
	}
	log.Debugw("executed transaction", "signer", signer.Address(), "tx", r.TxID, "status", r.Status)
	return r, nil
}

func signingRequest(tx *api.UnsignedTx) types.SigningRequest {
	return types.SigningRequest{Kind: tx.Kind, Payload: tx.Message}
}

// mapErr marks failures to reach the gateway as transient. Typed gateway
// errors already unwrap to the matching saga error.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var cerr *jsonrpc.RPCConnectionError
	if errors.As(err, &cerr) {
		return fmt.Errorf("%w: %s", types.ErrTransient, err)
	}
	return err
}
