package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContext_HasDeadline(t *testing.T) {
	t.Parallel()

	ctx := Context(t, 100*time.Millisecond)

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.Greater(t, time.Until(deadline), time.Duration(0))
	assert.NoError(t, ctx.Err())
}

func TestNoSleep(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NoSleep(context.Background(), time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NoSleep(ctx, time.Hour), context.Canceled)
}
