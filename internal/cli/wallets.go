package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thruflo/lightnode/internal/config"
	"github.com/thruflo/lightnode/internal/identity"
)

// ErrEmptyKey is returned when no private key was entered.
var ErrEmptyKey = errors.New("private key cannot be empty")

var walletsNewCount int

// stdin is the source of private keys for 'wallets add'. Tests replace it.
var stdin io.Reader = os.Stdin

var walletsCmd = &cobra.Command{
	Use:   "wallets",
	Short: "Manage .lightnode/wallets.json",
}

var walletsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a wallet from its private key",
	Long: `Prompts for a private key (input is hidden) and adds the wallet to
.lightnode/wallets.json. When stdin is not a terminal every non-empty line
is read as a private key, so keys can be piped in:

  lightnode wallets add < keys.txt`,
	Args: cobra.NoArgs,
	RunE: runWalletsAdd,
}

var walletsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate new random wallets",
	Args:  cobra.NoArgs,
	RunE:  runWalletsNew,
}

var walletsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallet addresses",
	Args:  cobra.NoArgs,
	RunE:  runWalletsList,
}

func init() {
	walletsNewCmd.Flags().IntVarP(&walletsNewCount, "count", "n", 1, "number of wallets to generate")
	walletsCmd.AddCommand(walletsAddCmd, walletsNewCmd, walletsListCmd)
	rootCmd.AddCommand(walletsCmd)
}

func runWalletsAdd(cmd *cobra.Command, args []string) error {
	keys, err := readPrivateKeys()
	if err != nil {
		return err
	}

	var ids []*identity.Identity
	for i, key := range keys {
		id, err := identity.FromPrivateKey(key)
		if err != nil {
			return fmt.Errorf("key %d: %w", i+1, err)
		}
		ids = append(ids, id)
	}

	return appendWallets(ids)
}

func runWalletsNew(cmd *cobra.Command, args []string) error {
	if walletsNewCount <= 0 {
		return fmt.Errorf("--count must be positive")
	}

	ids := make([]*identity.Identity, 0, walletsNewCount)
	for range walletsNewCount {
		id, err := identity.Generate()
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	return appendWallets(ids)
}

func runWalletsList(cmd *cobra.Command, args []string) error {
	base, err := projectDir()
	if err != nil {
		return err
	}
	wallets, err := config.LoadWallets(base)
	if err != nil {
		return err
	}

	if len(wallets) == 0 {
		fmt.Println("No wallets found.")
		return nil
	}
	for _, w := range wallets {
		fmt.Println(w.Address)
	}
	return nil
}

// appendWallets adds ids to wallets.json, skipping addresses already present.
func appendWallets(ids []*identity.Identity) error {
	base, err := projectDir()
	if err != nil {
		return err
	}

	wallets, err := config.LoadWallets(base)
	if err != nil {
		return err
	}

	existing := make(map[string]bool, len(wallets))
	for _, w := range wallets {
		existing[strings.ToLower(w.Address)] = true
	}

	added := 0
	for _, id := range ids {
		if existing[strings.ToLower(id.Address())] {
			fmt.Printf("Skipped %s (already added)\n", id.Address())
			continue
		}
		existing[strings.ToLower(id.Address())] = true
		wallets = append(wallets, config.Wallet{Address: id.Address(), PrivateKey: id.PrivateKeyHex()})
		fmt.Printf("Added %s\n", id.Address())
		added++
	}

	if added == 0 {
		return nil
	}
	if err := config.SaveWallets(base, wallets); err != nil {
		return err
	}
	fmt.Printf("Saved %d wallet(s) to %s/%s\n", len(wallets), config.DirName, config.WalletsFile)
	return nil
}

// readPrivateKeys prompts with hidden input on a terminal, otherwise reads
// one key per line.
func readPrivateKeys() ([]string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Print("Private key: ")
		key, err := term.ReadPassword(int(f.Fd()))
		fmt.Println()
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		if strings.TrimSpace(string(key)) == "" {
			return nil, ErrEmptyKey
		}
		return []string{strings.TrimSpace(string(key))}, nil
	}

	var keys []string
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			keys = append(keys, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read private keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, ErrEmptyKey
	}
	return keys, nil
}
