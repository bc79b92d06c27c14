package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/thruflo/lightnode/internal/config"
	"github.com/thruflo/lightnode/internal/logging"
	"github.com/thruflo/lightnode/internal/runner"
	"github.com/thruflo/lightnode/internal/state"
)

// baseDir overrides the working directory. Tests set it.
var baseDir string

// project is everything a command needs from .lightnode/.
type project struct {
	base    string
	cfg     *config.Config
	wallets []config.Wallet
	proxies []string
	store   *state.Store
	log     *logging.Logger
}

func projectDir() (string, error) {
	if baseDir != "" {
		return baseDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

func loadProject() (*project, error) {
	base, err := projectDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(base)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, config.ValidationError{Field: "log_level", Message: err.Error()}
	}
	if verbose {
		level = logging.LevelDebug
	}
	log := logging.Default()
	log.SetLevel(level)

	wallets, err := config.LoadWallets(base)
	if err != nil {
		return nil, err
	}

	proxies, err := config.LoadProxies(base)
	if err != nil {
		return nil, err
	}

	store, err := state.Open(filepath.Join(config.Dir(base), config.StateFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	return &project{
		base:    base,
		cfg:     cfg,
		wallets: wallets,
		proxies: proxies,
		store:   store,
		log:     log,
	}, nil
}

// requireWallets fails with a hint when wallets.json is empty.
func (p *project) requireWallets() error {
	if len(p.wallets) == 0 {
		return fmt.Errorf("no wallets in %s (run 'lightnode wallets add' or 'lightnode wallets new')",
			filepath.Join(config.DirName, config.WalletsFile))
	}
	return nil
}

func (p *project) newRunner() *runner.Runner {
	return runner.New(runner.Options{
		Config: p.cfg,
		Store:  p.store,
		Logger: p.log,
	})
}
