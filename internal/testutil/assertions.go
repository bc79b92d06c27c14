package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/lightnode/internal/identity"
	"github.com/thruflo/lightnode/internal/state"
)

// AssertCompleted asserts the store holds exactly ids for addr, in order.
func AssertCompleted(t *testing.T, store *state.Store, addr string, ids ...string) {
	t.Helper()
	if ids == nil {
		ids = []string{}
	}
	assert.Equal(t, ids, store.Completed(addr), "completed tasks for %s", addr)
}

// AssertSignedBy asserts that call carries a "sign" and "timestamp" whose
// signature over "<phrase> <addr> at <timestamp>" recovers to addr.
func AssertSignedBy(t *testing.T, call Call, phrase, addr string) {
	t.Helper()

	sig, ok := call.Body["sign"].(string)
	require.True(t, ok, "call %s %s has no sign field", call.Method, call.Path)
	ts, ok := call.Body["timestamp"].(float64)
	require.True(t, ok, "call %s %s has no timestamp field", call.Method, call.Path)

	message := fmt.Sprintf("%s %s at %d", phrase, addr, int64(ts))
	recovered, err := identity.RecoverAddress(message, sig)
	require.NoError(t, err)
	assert.Equal(t, addr, recovered, "signature of %q", message)
}
