package types

import "errors"

var (
	// ErrValidation is returned for a malformed request or missing file
	// content. Never retried, and returned before any side effect.
	ErrValidation = errors.New("invalid upload request")

	// ErrTransient marks a failure that is safe to retry (timeouts, dropped
	// connections, rate limits).
	ErrTransient = errors.New("transient failure")

	// ErrInsufficientFunds is returned when the payer cannot cover the
	// requested amount. Terminal.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotAccepted is returned by Bridge.Initiate when the submission was
	// rejected before the source ledger accepted it, so it can be resubmitted.
	ErrNotAccepted = errors.New("submission not accepted")

	// ErrAttestationTimeout is returned when the attestation for a bridge
	// transfer did not arrive within the configured timeout.
	ErrAttestationTimeout = errors.New("timed out waiting for attestation")

	// ErrUnauthorized marks signature and authorization failures.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRouteUnavailable is returned by a swap strategy that cannot find a
	// route or has no liquidity for the pair.
	ErrRouteUnavailable = errors.New("swap route unavailable")

	// ErrTxFailed is returned when a transaction was executed but its reported
	// status is not success.
	ErrTxFailed = errors.New("transaction failed")
)
