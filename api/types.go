package api

import (
	"fmt"
	"strings"

	"github.com/jhuhnke/solana-walrus/saga/types"
)

// UnsignedTx is a transaction built by the gateway, with the way it must be
// signed.
type UnsignedTx struct {
	Kind    types.SigningKind
	Message []byte
}

type TransferRequest struct {
	From   string
	To     string
	Amount types.Amount
	Memo   string
}

type BridgeTransferRequest struct {
	Amount             types.Amount
	SourceAddress      string
	DestinationAddress string
	Memo               string
}

// BridgeTransfer is a transfer accepted by the source ledger. Sequence is the
// message sequence assigned by the bridge.
type BridgeTransfer struct {
	SourceTxID string
	Sequence   string
}

type Attestation struct {
	Sequence string
	VAA      []byte
}

type ClaimRequest struct {
	VAA      []byte
	Receiver string
}

type SwapRequest struct {
	InputToken  string
	OutputToken string
	Amount      types.Amount
	Sender      string
	SlippageBps uint32
	Sponsored   bool
}

type RegisterRequest struct {
	types.RegisterParams
	Sender string
}

type CertifyRequest struct {
	types.CertifyParams
	Sender string
}

// TxEvent is an event emitted by a destination ledger transaction, with its
// fields rendered as strings.
type TxEvent struct {
	Type   string
	Fields map[string]string
}

// TxReceipt is the effects of an executed destination ledger transaction.
type TxReceipt struct {
	TxID   string
	Status types.TxStatus
	Error  string
	Events []TxEvent
	// BalanceChanges are the amounts received by the sender, by coin type
	BalanceChanges map[string]types.Amount
}

func (r *TxReceipt) Result() types.TxResult {
	return types.TxResult{TxID: r.TxID, Status: r.Status, Error: r.Error}
}

// Event returns the first event whose type ends with suffix.
func (r *TxReceipt) Event(suffix string) (*TxEvent, error) {
	for i := range r.Events {
		if strings.HasSuffix(r.Events[i].Type, suffix) {
			return &r.Events[i], nil
		}
	}
	return nil, fmt.Errorf("tx %s emitted no %s event", r.TxID, suffix)
}
