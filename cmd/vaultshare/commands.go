package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/vaultshare/internal/api"
	"github.com/mtlprog/vaultshare/internal/config"
	"github.com/mtlprog/vaultshare/internal/database"
	"github.com/mtlprog/vaultshare/internal/domain"
	"github.com/mtlprog/vaultshare/internal/export"
	"github.com/mtlprog/vaultshare/internal/snapshot"
	"github.com/mtlprog/vaultshare/internal/worker"
)

var errDatabaseRequired = errors.New("DATABASE_URL is required")

func positionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "vault", Usage: "vault account address", Value: defaultVault},
		&cli.StringFlag{Name: "wallet", Usage: "depositor wallet address", Value: defaultWallet},
	}
}

func valueCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "value",
		Usage: "value one wallet's vault position against live ledger state",
		Flags: append(positionFlags(),
			&cli.StringFlag{Name: "label", Usage: "optional position label"},
			&cli.BoolFlag{Name: "json", Usage: "print the valuation as JSON"},
		),
		Action: func(c *cli.Context) error {
			p := domain.TrackedPosition{Vault: c.String("vault"), Wallet: c.String("wallet"), Label: c.String("label")}

			v, err := newPositionService(cfg).Value(c.Context, p)
			if err != nil {
				return fmt.Errorf("valuing position: %w", err)
			}

			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(v)
			}
			printValuation(c, v)
			return nil
		},
	}
}

func printValuation(c *cli.Context, v domain.PositionValuation) {
	out := c.App.Writer
	fmt.Fprintf(out, "Token mint:          %s\n", v.TokenMint)
	fmt.Fprintf(out, "LP mint:             %s\n", v.LPMint)
	fmt.Fprintf(out, "User token account:  %s\n", v.TokenAccount)
	fmt.Fprintf(out, "Total amount:        %d\n", v.TotalAmount)
	fmt.Fprintf(out, "Locked profit:       %d\n", v.LockedProfit)
	fmt.Fprintf(out, "Withdrawable amount: %d (%s)\n", v.WithdrawableAmount, v.WithdrawableUI)
	fmt.Fprintf(out, "LP supply:           %d\n", v.TotalSupply)
	fmt.Fprintf(out, "LP balance:          %d\n", v.UserBalance)
	fmt.Fprintf(out, "Underlying share:    %d (%s)\n", v.UnderlyingShare, v.UnderlyingShareUI)
	fmt.Fprintf(out, "Valued at:           %s\n", v.ValuedAt.Format(time.RFC3339))
	for _, w := range v.Warnings {
		fmt.Fprintf(out, "Warning:             %s\n", w)
	}
}

func serveCommand(cfg config.Config, stop context.CancelFunc) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and the scheduled snapshot worker",
		Action: func(c *cli.Context) error {
			ctx := c.Context

			if !cfg.RequireDatabaseURL() {
				return errDatabaseRequired
			}
			pool, err := database.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrationsSub, err := fs.Sub(migrationsFS, "migrations")
			if err != nil {
				return fmt.Errorf("creating migrations sub-fs: %w", err)
			}
			if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			positions, err := config.LoadPositions(cfg.PositionsFile)
			if err != nil {
				return err
			}

			positionSvc := newPositionService(cfg)
			snapshotSvc := snapshot.NewService(positionSvc, snapshot.NewPgRepository(pool))

			hook, err := newExportHook(ctx, cfg)
			if err != nil {
				return err
			}

			snapshotWorker := worker.NewSnapshotWorker(snapshotSvc, positions, cfg.SnapshotSchedule, hook)
			go func() {
				if err := snapshotWorker.Run(ctx); err != nil {
					slog.Error("snapshot worker stopped", "error", err)
					stop()
				}
			}()

			if cfg.AdminAPIKey == "" {
				slog.Warn("ADMIN_API_KEY not set, generate endpoint is unprotected")
			}

			srv := api.NewServer(cfg.HTTPPort, positionSvc, snapshotSvc, positions, cfg.AdminAPIKey)
			go func() {
				slog.Info("HTTP server listening", "port", cfg.HTTPPort)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("HTTP server error", "error", err)
					stop()
				}
			}()

			<-ctx.Done()
			slog.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP server shutdown error", "error", err)
			}

			slog.Info("shutdown complete")
			return nil
		},
	}
}

// newExportHook builds the after-snapshot export from whichever destinations are configured.
func newExportHook(ctx context.Context, cfg config.Config) (worker.AfterSnapshotHook, error) {
	var writers export.MultiWriter
	if cfg.ExportXLSXPath != "" {
		writers = append(writers, export.NewXLSXWriter(cfg.ExportXLSXPath))
	}
	if cfg.GoogleSheetsID != "" && cfg.GoogleCredentialsJSON != "" {
		sw, err := export.NewSheetsWriter(ctx, cfg.GoogleSheetsID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("creating sheets writer: %w", err)
		}
		writers = append(writers, sw)
	}
	if len(writers) == 0 {
		return nil, nil
	}
	return export.NewService(writers), nil
}

func exportCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write stored snapshot history of a position to an Excel workbook",
		Flags: append(positionFlags(),
			&cli.StringFlag{Name: "out", Usage: "output .xlsx path", Value: "valuations.xlsx"},
			&cli.IntFlag{Name: "limit", Usage: "number of snapshots to export", Value: snapshot.DefaultListLimit},
		),
		Action: func(c *cli.Context) error {
			ctx := c.Context

			if !cfg.RequireDatabaseURL() {
				return errDatabaseRequired
			}
			pool, err := database.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			snapshotSvc := snapshot.NewService(nil, snapshot.NewPgRepository(pool))
			history, err := snapshotSvc.History(ctx, c.String("vault"), c.String("wallet"), c.Int("limit"))
			if err != nil {
				return err
			}

			out := c.String("out")
			if err := export.NewService(export.NewXLSXWriter(out)).Export(ctx, history); err != nil {
				return err
			}
			slog.Info("exported snapshot history", "rows", len(history), "path", out)
			return nil
		},
	}
}
