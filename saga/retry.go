package saga

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

// RetryPolicy bounds the attempts made for one step.
type RetryPolicy struct {
	MaxAttempts int
	// Delay returns the time to wait after the given (1-based) failed attempt
	Delay func(attempt int) time.Duration
	// Retryable reports whether the error may be retried
	Retryable func(err error) bool
}

func ExponentialBackoff(min, max time.Duration, factor float64) func(int) time.Duration {
	return func(attempt int) time.Duration {
		b := &backoff.Backoff{Min: min, Max: max, Factor: factor}
		return b.ForAttempt(float64(attempt - 1))
	}
}

func FixedDelay(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}

func IsTransient(err error) bool {
	return errors.Is(err, types.ErrTransient)
}

// claimTransientErrors are the failures of a claim that clear up on their
// own, typically because the wrapped token's package is being created or
// upgraded on the destination ledger.
var claimTransientErrors = []string{
	"object does not exist",
	"package upgrade pending",
	"decimals lookup failed",
	"Package object does not exist",
	"coin::update_symbol",
	"assert_package_upgrade_cap",
	"get_decimals",
	"token_address",
}

// IsTransientClaimError classifies claim failures against a fixed allow-list.
// Anything that does not match is terminal.
func IsTransientClaimError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return lo.SomeBy(claimTransientErrors, func(sig string) bool {
		return strings.Contains(msg, sig)
	})
}

// retry runs fn until it succeeds, fails with an error the policy does not
// retry, or runs out of attempts. Attempts are counted in st under state.
func (s *Saga) retry(ctx context.Context, st *types.UploadState, state uploadcheckpoints.State, p RetryPolicy, fn func(ctx context.Context, attempt int) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		if st != nil {
			st.Attempts[string(state)]++
		}
		start := s.clock.Now()
		err := fn(ctx, attempt)
		s.recordAttempt(ctx, state, start, err)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if attempt >= maxAttempts {
			return xerrors.Errorf("exhausted %d attempts in %s: %w", maxAttempts, state, err)
		}

		var d time.Duration
		if p.Delay != nil {
			d = p.Delay(attempt)
		}
		if st != nil {
			s.uploadLogger.Warnw(st.ID, "step failed, retrying", "state", state, "attempt", attempt, "wait", d, "err", err)
		} else {
			log.Warnw("call failed, retrying", "state", state, "attempt", attempt, "wait", d, "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(d):
		}
	}
}

func (s *Saga) transientPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Delay:       ExponentialBackoff(s.cfg.BackoffMin, s.cfg.BackoffMax, s.cfg.BackoffFactor),
		Retryable:   IsTransient,
	}
}
