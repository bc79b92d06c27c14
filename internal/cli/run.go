package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	runOnce     bool
	runInterval time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the node pipeline for every wallet",
	Long: `Runs a pass over every wallet in .lightnode/wallets.json, then waits for
the interval and runs again until interrupted.

Each pass, per wallet:
1. Checks the node status, registering unknown wallets
2. Connects the node when it is not running
3. Logs node points and checks in when the last claim is 24h old
4. Works on the first task that is not completed yet

Proxies from .lightnode/proxies.txt are assigned round-robin.

Example:
  lightnode run
  lightnode run --once
  lightnode run --interval 30m`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single pass and exit")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "time between passes (default from config)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if err := p.requireWallets(); err != nil {
		return err
	}

	interval := p.cfg.Interval
	if runInterval > 0 {
		interval = runInterval
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Running %d wallet(s) with %d proxy(ies)\n", len(p.wallets), len(p.proxies))

	err = p.newRunner().Loop(ctx, p.wallets, p.proxies, interval, runOnce)
	if errors.Is(err, context.Canceled) {
		fmt.Println("Stopped.")
		return nil
	}
	return err
}
