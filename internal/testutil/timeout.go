package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultPassTimeout bounds a full pass against the fake API.
const DefaultPassTimeout = 30 * time.Second

// cleanupBuffer is kept free before the test deadline so t.Cleanup can run.
const cleanupBuffer = 5 * time.Second

// Context returns a context that ends before the test's own deadline, or
// after fallback when the test has none.
func Context(t *testing.T, fallback time.Duration) context.Context {
	t.Helper()

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := t.Deadline(); ok && time.Until(deadline.Add(-cleanupBuffer)) > 0 {
		ctx, cancel = context.WithDeadline(context.Background(), deadline.Add(-cleanupBuffer))
	} else {
		ctx, cancel = context.WithTimeout(context.Background(), fallback)
	}
	t.Cleanup(cancel)
	return ctx
}

// NoSleep is a backoff sleeper that returns immediately unless ctx is done.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
