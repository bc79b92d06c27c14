package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register every wallet under the referral code",
	Long: `Verifies the configured referral code, then registers each wallet under it.
The code comes from ref_code in config.yaml or LIGHTNODE_REF_CODE.

Unregistered wallets are also registered automatically by 'lightnode run'.

Example:
  lightnode register`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
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

	n := p.newRunner().RegisterAll(ctx, p.wallets, p.proxies)
	fmt.Printf("Registered %d/%d wallet(s) with code %s\n", n, len(p.wallets), p.cfg.RefCode)
	if n < len(p.wallets) {
		return fmt.Errorf("failed to register %d wallet(s)", len(p.wallets)-n)
	}
	return nil
}
