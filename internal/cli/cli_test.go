package cli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/thruflo/lightnode/internal/config"
	"github.com/thruflo/lightnode/internal/state"
	"github.com/thruflo/lightnode/internal/testutil"
)

func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// useProject points the commands at a fresh project directory wired to api.
func useProject(t *testing.T, api *testutil.FakeAPI, wallets []config.Wallet, tasks []config.Task) (string, *state.Store) {
	t.Helper()

	dir, store := testutil.SetupTestDir(t, api.API(), wallets, tasks)
	baseDir = dir
	t.Cleanup(func() { baseDir = "" })
	return dir, store
}
