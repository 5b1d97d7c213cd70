// Package retry runs fallible operations with bounded, deterministic
// exponential backoff: the n-th retry (0-based) waits Backoff × 2^n.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy configures Do.
type Policy struct {
	// Retries is the number of retries after the first attempt, so an
	// operation runs at most Retries+1 times.
	Retries int

	// Backoff is the wait before the first retry.
	Backoff time.Duration

	// OnRetry is called with the 1-based retry number and the error that
	// triggered it, before the backoff wait that precedes the retry. The
	// final failure is not reported here.
	OnRetry func(attempt int, err error)
}

// Permanent marks err as not worth retrying. Do returns err unwrapped.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a Permanent error, the retries are
// spent or ctx is done. The last error is returned on failure.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	if p.Retries <= 0 {
		res, err := op(ctx)
		return res, unwrapPermanent(err)
	}

	attempt := 0
	notify := func(err error, _ time.Duration) {
		attempt++
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
	}

	return backoff.RetryNotifyWithData(func() (T, error) {
		return op(ctx)
	}, newBackOff(ctx, p), notify)
}

// Run is Do for operations without a result.
func Run(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func newBackOff(ctx context.Context, p Policy) backoff.BackOffContext {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.Backoff
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxInterval = time.Duration(math.MaxInt64)
	eb.MaxElapsedTime = 0
	eb.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(p.Retries)), ctx)
}

func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}
