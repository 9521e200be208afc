package main

import (
	"context"
	"embed"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/vaultshare/internal/config"
	"github.com/mtlprog/vaultshare/internal/ledger"
	"github.com/mtlprog/vaultshare/internal/position"
	"github.com/mtlprog/vaultshare/internal/vault"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	defaultVault  = "8p1VKP45hhqq5iZG5fNGoi7ucme8nFLeChoDWNy7rWFm"
	defaultWallet = "5ZTBXQRpKa7TUVeYgC8tXVEFiMaTe77nR1aJcBRdF1Vz"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	app := &cli.App{
		Name:  "vaultshare",
		Usage: "value depositor positions in Meteora dynamic vaults",
		Commands: []*cli.Command{
			valueCommand(cfg),
			serveCommand(cfg, stop),
			exportCommand(cfg),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("vaultshare: %v", err)
	}
}

// newPositionService wires the ledger client and valuation pipeline from configuration.
func newPositionService(cfg config.Config) *position.Service {
	client := ledger.NewClient(cfg.RPCURL, cfg.RPCCommitment, cfg.RPCRetryMax, cfg.RPCRetryBaseDelay)
	return position.NewService(client, vault.NewPipeline(), cfg.RPCConcurrency)
}
