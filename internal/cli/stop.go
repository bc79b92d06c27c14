package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the light node of every wallet",
	Long: `Sends a signed deactivation request for every wallet. Stopping a node
also claims the points it accrued since it was started.

Example:
  lightnode stop`,
	Args: cobra.NoArgs,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if err := p.requireWallets(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	n := p.newRunner().StopAll(ctx, p.wallets, p.proxies)
	fmt.Printf("Stopped %d/%d node(s)\n", n, len(p.wallets))
	if n < len(p.wallets) {
		return fmt.Errorf("failed to stop %d node(s)", len(p.wallets)-n)
	}
	return nil
}
