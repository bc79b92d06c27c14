package request

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Rule is the action taken for one Kind: return to the caller, or sleep Delay
// and try again.
type Rule struct {
	Retry bool
	Delay time.Duration
}

// Policy maps each Kind to its Rule. Kinds missing from the map are terminal.
type Policy map[Kind]Rule

// Default delays of the upstream client.
const (
	DefaultRateLimitDelay = 60 * time.Second
	DefaultRetryDelay     = 2 * time.Second
	DefaultMaxAttempts    = 20
)

// DefaultPolicy returns the fixed-delay policy: one minute after a 429,
// two seconds after anything transient, everything else terminal.
func DefaultPolicy() Policy {
	return NewPolicy(DefaultRateLimitDelay, DefaultRetryDelay)
}

// NewPolicy returns the standard policy table with custom delays.
func NewPolicy(rateLimitDelay, retryDelay time.Duration) Policy {
	return Policy{
		KindSuccess:     {},
		KindNotFound:    {},
		KindBadRequest:  {},
		KindConflict:    {},
		KindRateLimited: {Retry: true, Delay: rateLimitDelay},
		KindTransient:   {Retry: true, Delay: retryDelay},
	}
}

// Rule returns the rule for k.
func (p Policy) Rule(k Kind) Rule {
	return p[k]
}

// Classify maps one HTTP response to a Kind. A 409 is only a Conflict when the
// caller opted in; elsewhere it is treated like any other unexpected status.
func Classify(statusCode int, body []byte, allowConflict bool) Kind {
	switch {
	case statusCode >= 200 && statusCode < 300:
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) > 0 && !json.Valid(trimmed) {
			return KindTransient
		}
		return KindSuccess
	case statusCode == http.StatusNotFound:
		return KindNotFound
	case statusCode == http.StatusBadRequest:
		return KindBadRequest
	case statusCode == http.StatusConflict && allowConflict:
		return KindConflict
	case statusCode == http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindTransient
	}
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
