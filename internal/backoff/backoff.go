// Package backoff computes retry delays and drives bounded retry loops for every
// network-calling component (catalog transport, style sheets, binaries) and for the
// failed-load retry eligibility check in the manager.
package backoff

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	cbackoff "github.com/cenkalti/backoff/v5"
)

// Defaults shared by the fetchers.
const (
	DefaultBase        = 1 * time.Second
	DefaultJitter      = 500 * time.Millisecond
	DefaultMaxAttempts = 3
)

// maxShift keeps base<<shift from overflowing on absurd attempt numbers.
const maxShift = 30

// Delay returns base * 2^(attempt-1) plus a uniform jitter in [0, jitterCeiling).
// Attempts below 1 are treated as 1.
func Delay(base time.Duration, attempt int, jitterCeiling time.Duration) time.Duration {
	return delayWith(base, attempt, jitterCeiling, uniform)
}

// MinWait is Delay without jitter. The manager uses it as the minimum time a failed
// family must wait before an explicit retry is honoured.
func MinWait(base time.Duration, attempt int) time.Duration {
	return delayWith(base, attempt, 0, uniform)
}

func delayWith(base time.Duration, attempt int, jitterCeiling time.Duration, jitter func(time.Duration) time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	shift := attempt - 1
	if shift > maxShift {
		shift = maxShift
	}
	d := base << uint(shift)
	if jitterCeiling > 0 && jitter != nil {
		d += jitter(jitterCeiling)
	}
	return d
}

func uniform(ceiling time.Duration) time.Duration {
	if ceiling <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(ceiling)))
}

// Policy configures a bounded retry loop.
type Policy struct {
	Base        time.Duration
	Jitter      time.Duration
	MaxAttempts int
	// JitterFunc overrides the random source; nil uses math/rand/v2.
	JitterFunc func(ceiling time.Duration) time.Duration
	// OnRetry, if set, observes every scheduled retry.
	OnRetry func(attempt int, err error, next time.Duration)
}

// withDefaults fills zero fields.
func (p Policy) withDefaults() Policy {
	if p.Base <= 0 {
		p.Base = DefaultBase
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.JitterFunc == nil {
		p.JitterFunc = uniform
	}
	return p
}

// Schedule adapts Delay to the cenkalti BackOff interface. The n-th call to
// NextBackOff after Reset yields the delay for attempt n.
type Schedule struct {
	policy  Policy
	attempt int
}

// NewSchedule returns a Schedule positioned at attempt 1.
func NewSchedule(p Policy) *Schedule {
	return &Schedule{policy: p.withDefaults(), attempt: 1}
}

// NextBackOff implements cbackoff.BackOff.
func (s *Schedule) NextBackOff() time.Duration {
	d := delayWith(s.policy.Base, s.attempt, s.policy.Jitter, s.policy.JitterFunc)
	s.attempt++
	return d
}

// Reset implements cbackoff.BackOff.
func (s *Schedule) Reset() { s.attempt = 1 }

// Permanent marks err as not worth retrying; Retry returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return cbackoff.Permanent(err)
}

// Retry calls op until it succeeds, returns a Permanent error, the context ends, or
// MaxAttempts is reached. op receives the 1-based attempt number. The returned error
// is the last one op produced, unwrapped from any Permanent marker.
func Retry(ctx context.Context, p Policy, op func(ctx context.Context, attempt int) error) error {
	p = p.withDefaults()
	attempt := 0
	_, err := cbackoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, op(ctx, attempt)
	},
		cbackoff.WithBackOff(NewSchedule(p)),
		cbackoff.WithMaxTries(uint(p.MaxAttempts)),
		cbackoff.WithNotify(func(err error, next time.Duration) {
			if p.OnRetry != nil {
				p.OnRetry(attempt, err, next)
			}
		}),
	)
	var perm *cbackoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}
