package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/custodia/govaultd/internal/core/addr"
)

var deriveCmd = &cobra.Command{
	Use:   "derive <owner> <mint>",
	Short: "Derive the control addresses for an (owner, mint) vault",
	Long: `Compute the vault record, signing authority and custody addresses for
an owner and asset mint under the configured program, without touching any
state. The same derivation the daemon enforces on every instruction.`,
	Args: cobra.ExactArgs(2),
	RunE: runDerive,
}

func init() {
	rootCmd.AddCommand(deriveCmd)
}

func runDerive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	program, err := cfg.Program()
	if err != nil {
		return err
	}

	owner, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return fmt.Errorf("parse owner: %w", err)
	}
	mint, err := solana.PublicKeyFromBase58(args[1])
	if err != nil {
		return fmt.Errorf("parse mint: %w", err)
	}

	derived, err := addr.Derive(owner, mint, program)
	if err != nil {
		return err
	}
	claims, _, err := addr.ClaimsAccount(derived.Vault, program)
	if err != nil {
		return err
	}

	out := struct {
		addr.Addresses
		Claims solana.PublicKey `json:"claims"`
	}{Addresses: derived, Claims: claims}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
