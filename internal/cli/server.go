package cli

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia/govaultd/internal/core/ledger"
	"github.com/custodia/govaultd/internal/core/tx"
	"github.com/custodia/govaultd/internal/server/jsonrpc"
	"github.com/custodia/govaultd/internal/storage"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the vault daemon",
	Long: `Start the vaultd server: opens the configured entry store and history
database, builds the instruction engine, and serves the vault methods over
HTTP JSON-RPC until interrupted.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Running vaultd with no subcommand starts the server.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServer(cmd, args)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	program, err := cfg.Program()
	if err != nil {
		return err
	}

	store, err := storage.OpenStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	history, err := storage.OpenHistory(cfg.History)
	if err != nil {
		return err
	}

	opts := []tx.Option{}
	var reader jsonrpc.HistoryReader
	if history != nil {
		defer history.Close()
		opts = append(opts, tx.WithHistory(history))
		reader = history
	}

	engine := tx.NewEngine(ledger.New(store), program, opts...)
	server := jsonrpc.NewServer(
		jsonrpc.NewHandler(engine, reader),
		cfg.Server.Listen,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	if !quiet {
		fmt.Printf("vaultd serving program %s\n", program)
		fmt.Printf("  storage: %s (%s)\n", cfg.Storage.Backend, cfg.Storage.Path)
		fmt.Printf("  history: %s\n", cfg.History.Driver)
		fmt.Printf("  listen:  http://%s/\n", cfg.Server.Listen)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Printf("server stopped: %v", err)
		return err
	}
	return nil
}
