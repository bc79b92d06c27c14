package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lightnode",
	Short: "LayerEdge light node client for a fleet of wallets",
	Long: `Lightnode keeps a LayerEdge light node running for every configured
wallet, claims daily node points and works through the dashboard tasks,
recording each confirmed task so it is never sent twice.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("lightnode version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every request attempt")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
