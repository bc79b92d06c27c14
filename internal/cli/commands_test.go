package cli

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/lightnode/internal/config"
	"github.com/thruflo/lightnode/internal/testutil"
)

func TestRunCommand_Once(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.RouteHappyPath(testutil.AddressA, testutil.PlainTasks())
	dir, _ := useProject(t, api, testutil.SampleWallets()[:1], testutil.PlainTasks())

	runOnce = true
	defer func() { runOnce = false }()

	output := captureOutput(func() {
		require.NoError(t, runRun(runCmd, nil))
	})

	assert.Contains(t, output, "Running 1 wallet(s)")
	assert.Equal(t, 1, api.Count(http.MethodPost, testutil.TaskPath("t1")))

	// The pass is persisted where status reads it.
	p, err := loadProject()
	require.NoError(t, err)
	assert.Equal(t, dir, p.base)
	testutil.AssertCompleted(t, p.store, testutil.AddressA, "t1")
}

func TestRunCommand_NoWallets(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	useProject(t, api, nil, nil)

	err := runRun(runCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no wallets")
	assert.Empty(t, api.Calls())
}

func TestRunCommand_InvalidConfig(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	dir, _ := useProject(t, api, testutil.SampleWallets()[:1], nil)
	testutil.WriteTestFile(t, config.Dir(dir), config.ConfigFile, "concurrency: 0\n")

	err := runRun(runCmd, nil)
	require.Error(t, err)
	assert.True(t, config.IsValidationError(err))
}

func TestStopCommand(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.RouteHappyPath(testutil.AddressA, nil)
	api.RouteHappyPath(testutil.AddressB, nil)
	useProject(t, api, testutil.SampleWallets()[:2], nil)

	output := captureOutput(func() {
		require.NoError(t, runStop(stopCmd, nil))
	})

	assert.Contains(t, output, "Stopped 2/2 node(s)")
}

func TestStopCommand_PartialFailure(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.RouteHappyPath(testutil.AddressA, nil)
	useProject(t, api, testutil.SampleWallets()[:2], nil)

	var err error
	output := captureOutput(func() {
		err = runStop(stopCmd, nil)
	})

	require.Error(t, err)
	assert.Contains(t, output, "Stopped 1/2 node(s)")
}

func TestRegisterCommand(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.RouteHappyPath(testutil.AddressA, nil)
	useProject(t, api, testutil.SampleWallets()[:1], nil)

	output := captureOutput(func() {
		require.NoError(t, runRegister(registerCmd, nil))
	})

	assert.Contains(t, output, "Registered 1/1 wallet(s) with code "+config.DefaultRefCode)
	calls := api.CallsTo(http.MethodPost, testutil.RegisterPath(config.DefaultRefCode))
	require.Len(t, calls, 1)
	assert.Equal(t, testutil.AddressA, calls[0].Body["walletAddress"])
}

func TestRegisterCommand_RefCodeFromEnvFile(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.RouteHappyPath(testutil.AddressA, nil)
	api.Reply(http.MethodPost, testutil.RegisterPath("ENVCODE"), testutil.OK(`{"message":"registered"}`))
	dir, _ := useProject(t, api, testutil.SampleWallets()[:1], nil)
	testutil.WriteTestFile(t, config.Dir(dir), config.EnvFile, config.EnvRefCode+"=ENVCODE\n")

	captureOutput(func() {
		require.NoError(t, runRegister(registerCmd, nil))
	})

	assert.Equal(t, 1, api.Count(http.MethodPost, testutil.RegisterPath("ENVCODE")))
	verify := api.CallsTo(http.MethodPost, testutil.VerifyCodePath)
	require.Len(t, verify, 1)
	assert.Equal(t, "ENVCODE", verify[0].Body["invite_code"])
}

func TestStatusCommand_List(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	_, store := useProject(t, api, testutil.SampleWallets()[:2], testutil.SampleTasks())
	require.NoError(t, store.MarkCompleted(testutil.AddressA, config.ProofTaskID))
	require.NoError(t, store.MarkCompleted(testutil.AddressA, "t1"))
	require.NoError(t, store.MarkCompleted(testutil.AddressC, "t1"))

	output := captureOutput(func() {
		require.NoError(t, runStatus(statusCmd, nil))
	})

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "WALLET")
	assert.Regexp(t, testutil.AddressA+`\s+2/3\s+t2`, lines[2])
	assert.Regexp(t, testutil.AddressB+`\s+0/3\s+`+config.ProofTaskID, lines[3])
	assert.Regexp(t, testutil.AddressC+`\s+1/3\s+`+config.ProofTaskID, lines[4], "addresses only in state are listed too")
	assert.Empty(t, api.Calls(), "status sends no requests")
}

func TestStatusCommand_Empty(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	useProject(t, api, nil, nil)

	output := captureOutput(func() {
		require.NoError(t, runStatus(statusCmd, nil))
	})

	assert.Contains(t, output, "No wallets found")
}

func TestStatusCommand_ShowWallet(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	_, store := useProject(t, api, testutil.SampleWallets()[:1], testutil.PlainTasks())
	require.NoError(t, store.MarkCompleted(testutil.AddressA, "t1"))

	output := captureOutput(func() {
		require.NoError(t, runStatus(statusCmd, []string{strings.ToLower(testutil.AddressA)}))
	})

	assert.Contains(t, output, "1/2 completed")
	assert.Contains(t, output, "[x] Task One (t1)")
	assert.Contains(t, output, "[ ] Task Two (t2)")
}

func TestStatusCommand_UnknownWallet(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	useProject(t, api, testutil.SampleWallets()[:1], nil)

	err := runStatus(statusCmd, []string{"0xdead"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallet not found")
}

func TestInitCommand(t *testing.T) {
	tmpDir := t.TempDir()
	baseDir = tmpDir
	defer func() { baseDir = "" }()

	output := captureOutput(func() {
		require.NoError(t, runInit(initCmd, nil))
	})
	assert.Contains(t, output, "Initialized .lightnode/")

	dir := config.Dir(tmpDir)
	for _, name := range []string{config.ConfigFile, config.EnvFile, config.ProxiesFile, ".gitignore"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	t.Run("written config loads as defaults", func(t *testing.T) {
		cfg, err := config.LoadConfig(tmpDir)
		require.NoError(t, err)
		assert.Equal(t, config.DefaultConfig(), *cfg)
	})

	t.Run("proxies template has no entries", func(t *testing.T) {
		proxies, err := config.LoadProxies(tmpDir)
		require.NoError(t, err)
		assert.Empty(t, proxies)
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		err := runInit(initCmd, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--force")
	})

	t.Run("overwrites with force", func(t *testing.T) {
		initForce = true
		defer func() { initForce = false }()

		captureOutput(func() {
			require.NoError(t, runInit(initCmd, nil))
		})
	})
}
