package api

import (
	"encoding/json"

	"github.com/filecoin-project/go-jsonrpc"

	"github.com/jhuhnke/solana-walrus/saga/types"
)

const (
	ETransient = iota + jsonrpc.FirstUserCode
	ENotAccepted
	EInsufficientFunds
	EUnauthorized
	ERouteUnavailable
)

var (
	RPCErrors = jsonrpc.NewErrors()

	_ error = (*TransientError)(nil)
	_ error = (*NotAcceptedError)(nil)
	_ error = (*InsufficientFundsError)(nil)
	_ error = (*UnauthorizedError)(nil)
	_ error = (*RouteUnavailableError)(nil)
)

func init() {
	RPCErrors.Register(ETransient, new(*TransientError))
	RPCErrors.Register(ENotAccepted, new(*NotAcceptedError))
	RPCErrors.Register(EInsufficientFunds, new(*InsufficientFundsError))
	RPCErrors.Register(EUnauthorized, new(*UnauthorizedError))
	RPCErrors.Register(ERouteUnavailable, new(*RouteUnavailableError))
}

// The gateway errors carry their message across the wire as error metadata,
// and unwrap to the matching saga error.

// TransientError signals a failure that may be retried: rate limits, node
// timeouts, dropped connections upstream.
type TransientError struct{ Msg string }

func (e *TransientError) Error() string                { return e.Msg }
func (e *TransientError) Unwrap() error                { return types.ErrTransient }
func (e *TransientError) MarshalJSON() ([]byte, error) { return json.Marshal(e.Msg) }
func (e *TransientError) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, &e.Msg) }

// NotAcceptedError signals a submission rejected before the ledger accepted
// it, for example by preflight simulation.
type NotAcceptedError struct{ Msg string }

func (e *NotAcceptedError) Error() string                { return e.Msg }
func (e *NotAcceptedError) Unwrap() error                { return types.ErrNotAccepted }
func (e *NotAcceptedError) MarshalJSON() ([]byte, error) { return json.Marshal(e.Msg) }
func (e *NotAcceptedError) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, &e.Msg) }

type InsufficientFundsError struct{ Msg string }

func (e *InsufficientFundsError) Error() string                { return e.Msg }
func (e *InsufficientFundsError) Unwrap() error                { return types.ErrInsufficientFunds }
func (e *InsufficientFundsError) MarshalJSON() ([]byte, error) { return json.Marshal(e.Msg) }
func (e *InsufficientFundsError) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, &e.Msg) }

type UnauthorizedError struct{ Msg string }

func (e *UnauthorizedError) Error() string                { return e.Msg }
func (e *UnauthorizedError) Unwrap() error                { return types.ErrUnauthorized }
func (e *UnauthorizedError) MarshalJSON() ([]byte, error) { return json.Marshal(e.Msg) }
func (e *UnauthorizedError) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, &e.Msg) }

type RouteUnavailableError struct{ Msg string }

func (e *RouteUnavailableError) Error() string                { return e.Msg }
func (e *RouteUnavailableError) Unwrap() error                { return types.ErrRouteUnavailable }
func (e *RouteUnavailableError) MarshalJSON() ([]byte, error) { return json.Marshal(e.Msg) }
func (e *RouteUnavailableError) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, &e.Msg) }
