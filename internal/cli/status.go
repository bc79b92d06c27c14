package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thruflo/lightnode/internal/config"
	"github.com/thruflo/lightnode/internal/tasks"
)

var statusCmd = &cobra.Command{
	Use:   "status [address]",
	Short: "Show completed tasks per wallet",
	Long: `Shows task progress from .lightnode/state.json. No requests are sent.

Without arguments, lists every wallet with its completed task count and the
task it will work on next. With an address, lists each configured task and
whether it is completed for that wallet.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		listWallets(p)
		return nil
	}
	return showWallet(p, args[0])
}

// statusAddresses returns the wallets' addresses followed by any address the
// store knows that is no longer in wallets.json.
func statusAddresses(p *project) []string {
	seen := make(map[string]bool)
	var addrs []string
	for _, w := range p.wallets {
		if !seen[w.Address] {
			seen[w.Address] = true
			addrs = append(addrs, w.Address)
		}
	}
	for _, addr := range p.store.Addresses() {
		if !seen[addr] {
			seen[addr] = true
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

func listWallets(p *project) {
	addrs := statusAddresses(p)
	if len(addrs) == 0 {
		fmt.Println("No wallets found.")
		return
	}

	walletWidth := len("WALLET")
	for _, addr := range addrs {
		if len(addr) > walletWidth {
			walletWidth = len(addr)
		}
	}

	fmt.Printf("%-*s  %-9s  %s\n", walletWidth, "WALLET", "COMPLETED", "NEXT")
	fmt.Printf("%s  %s  %s\n", strings.Repeat("-", walletWidth), strings.Repeat("-", 9), "----")

	for _, addr := range addrs {
		completed := p.store.Completed(addr)
		done, total := countTasks(p.cfg.Tasks, completed)

		next := "-"
		if action := tasks.NextAction(p.cfg.Tasks, completed); action.Kind != tasks.ActionIdle {
			next = action.Task.ID
		}
		fmt.Printf("%-*s  %-9s  %s\n", walletWidth, addr, fmt.Sprintf("%d/%d", done, total), next)
	}
}

func showWallet(p *project, address string) error {
	var addr string
	for _, a := range statusAddresses(p) {
		if strings.EqualFold(a, address) {
			addr = a
			break
		}
	}
	if addr == "" {
		return fmt.Errorf("wallet not found: %s", address)
	}

	completed := p.store.Completed(addr)
	done, total := countTasks(p.cfg.Tasks, completed)

	fmt.Println("Wallet Details")
	fmt.Println("==============")
	fmt.Println()
	printField("Address", addr)
	printField("Tasks", fmt.Sprintf("%d/%d completed", done, total))
	fmt.Println()

	isDone := make(map[string]bool, len(completed))
	for _, id := range completed {
		isDone[id] = true
	}
	for _, task := range p.cfg.Tasks {
		mark := " "
		if isDone[task.ID] {
			mark = "x"
		}
		fmt.Printf("  [%s] %s (%s)\n", mark, task.Title, task.ID)
	}
	return nil
}

func countTasks(list []config.Task, completed []string) (done, total int) {
	isDone := make(map[string]bool, len(completed))
	for _, id := range completed {
		isDone[id] = true
	}
	for _, t := range list {
		total++
		if isDone[t.ID] {
			done++
		}
	}
	return done, total
}

func printField(label, value string) {
	fmt.Printf("  %-10s %s\n", label+":", value)
}
