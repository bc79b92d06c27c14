package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thruflo/lightnode/internal/config"
	"github.com/thruflo/lightnode/internal/state"
)

// SetupTestDir creates a temporary project with a .lightnode directory whose
// config points at api, uses zero delays and a two-attempt budget, and lists
// wallets. Returns the project path and a Store over its state file.
func SetupTestDir(t *testing.T, api config.APIConfig, wallets []config.Wallet, tasks []config.Task) (string, *state.Store) {
	t.Helper()

	tmpDir := t.TempDir()
	dir := config.Dir(tmpDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	configContent := fmt.Sprintf(`ref_code: %s
concurrency: 2
interval: 1h
task_delay: 0s
request:
  max_attempts: 2
  timeout: 5s
  rate_limit_delay: 0s
  retry_delay: 0s
api:
  referral_url: %s
  dashboard_url: %s
  card_url: %s
`, config.DefaultRefCode, api.ReferralURL, api.DashboardURL, api.CardURL)

	if len(tasks) > 0 {
		configContent += "tasks:\n"
		for _, task := range tasks {
			configContent += fmt.Sprintf("  - id: %q\n    title: %q\n    message: %q\n", task.ID, task.Title, task.Message)
		}
	}
	WriteTestFile(t, dir, config.ConfigFile, configContent)

	if wallets != nil {
		require.NoError(t, config.SaveWallets(tmpDir, wallets))
	}

	return tmpDir, state.NewStore(filepath.Join(dir, config.StateFile))
}

// WriteTestFile writes content to base/name, creating parent directories.
func WriteTestFile(t *testing.T, base, name, content string) {
	t.Helper()

	path := filepath.Join(base, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// MustMarshalJSON marshals v or fails the test.
func MustMarshalJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
