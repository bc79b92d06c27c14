package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/lightnode/internal/config"
	"github.com/thruflo/lightnode/internal/identity"
	"github.com/thruflo/lightnode/internal/testutil"
)

func useStdin(t *testing.T, input string) {
	t.Helper()
	old := stdin
	stdin = strings.NewReader(input)
	t.Cleanup(func() { stdin = old })
}

func useEmptyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	baseDir = dir
	t.Cleanup(func() { baseDir = "" })
	return dir
}

func TestWalletsAdd_PipedKeys(t *testing.T) {
	dir := useEmptyDir(t)
	useStdin(t, testutil.PrivateKeyA+"\n\n"+strings.TrimPrefix(testutil.PrivateKeyB, "0x")+"\n")

	output := captureOutput(func() {
		require.NoError(t, runWalletsAdd(walletsAddCmd, nil))
	})

	assert.Contains(t, output, "Added "+testutil.AddressA)
	assert.Contains(t, output, "Added "+testutil.AddressB)

	wallets, err := config.LoadWallets(dir)
	require.NoError(t, err)
	assert.Equal(t, []config.Wallet{
		{Address: testutil.AddressA, PrivateKey: testutil.PrivateKeyA},
		{Address: testutil.AddressB, PrivateKey: testutil.PrivateKeyB},
	}, wallets)
}

func TestWalletsAdd_SkipsDuplicates(t *testing.T) {
	dir := useEmptyDir(t)
	require.NoError(t, config.SaveWallets(dir, testutil.SampleWallets()[:1]))
	useStdin(t, testutil.PrivateKeyA+"\n")

	output := captureOutput(func() {
		require.NoError(t, runWalletsAdd(walletsAddCmd, nil))
	})

	assert.Contains(t, output, "Skipped "+testutil.AddressA)
	wallets, err := config.LoadWallets(dir)
	require.NoError(t, err)
	assert.Len(t, wallets, 1)
}

func TestWalletsAdd_InvalidKey(t *testing.T) {
	useEmptyDir(t)
	useStdin(t, "not-a-key\n")

	err := runWalletsAdd(walletsAddCmd, nil)
	assert.ErrorIs(t, err, identity.ErrInvalidKey)
}

func TestWalletsAdd_Empty(t *testing.T) {
	useEmptyDir(t)
	useStdin(t, "")

	assert.ErrorIs(t, runWalletsAdd(walletsAddCmd, nil), ErrEmptyKey)
}

func TestWalletsNew(t *testing.T) {
	dir := useEmptyDir(t)
	walletsNewCount = 3
	defer func() { walletsNewCount = 1 }()

	captureOutput(func() {
		require.NoError(t, runWalletsNew(walletsNewCmd, nil))
	})

	wallets, err := config.LoadWallets(dir)
	require.NoError(t, err)
	require.Len(t, wallets, 3)
	for _, w := range wallets {
		id, err := identity.FromPrivateKey(w.PrivateKey)
		require.NoError(t, err)
		assert.Equal(t, id.Address(), w.Address, "stored key derives the stored address")
	}
}

func TestWalletsNew_InvalidCount(t *testing.T) {
	useEmptyDir(t)
	walletsNewCount = 0
	defer func() { walletsNewCount = 1 }()

	assert.Error(t, runWalletsNew(walletsNewCmd, nil))
}

func TestWalletsList(t *testing.T) {
	dir := useEmptyDir(t)
	require.NoError(t, config.SaveWallets(dir, testutil.SampleWallets()))

	output := captureOutput(func() {
		require.NoError(t, runWalletsList(walletsListCmd, nil))
	})

	assert.Equal(t, testutil.AddressA+"\n"+testutil.AddressB+"\n"+testutil.AddressC+"\n", output)
	assert.NotContains(t, output, testutil.PrivateKeyA[2:])
}
