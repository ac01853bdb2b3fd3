package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/ArowuTest/jackpot-ledger/internal/app"
	"github.com/ArowuTest/jackpot-ledger/internal/config"
	"github.com/ArowuTest/jackpot-ledger/internal/services"
	"github.com/ArowuTest/jackpot-ledger/internal/utils"
	"github.com/ArowuTest/jackpot-ledger/pkg/logging"
	"golang.org/x/exp/slog"
)

// importer reads a holder export and reports each balance to the ledger.
func main() {
	timeout := flag.Duration("timeout", 10*time.Minute, "overall import timeout")
	flag.Parse()
	if flag.NArg() != 1 {
		slog.Error("Usage: importer [-timeout 10m] <holders.csv>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if _, err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		slog.Error("Failed to configure logging", "error", err)
		os.Exit(1)
	}
	if !cfg.MongoDB.Enabled {
		slog.Error("The importer writes to MongoDB; set MONGODB_ENABLED=true")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rt, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to start", "error", err)
		os.Exit(1)
	}
	defer rt.Close(context.Background())

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		slog.Error("Failed to open CSV file", "path", flag.Arg(0), "error", err)
		os.Exit(1)
	}
	defer f.Close()

	result, err := utils.ImportBalances(ctx, f, func(ctx context.Context, row utils.BalanceRow) error {
		_, err := rt.Service.UpdateParticipant(ctx, row.Wallet, services.ParticipantUpdate{
			ReportedBalance: row.Balance,
			TokenAccount:    row.TokenAccount,
		})
		return err
	})
	if err != nil {
		slog.Error("Import aborted", "error", err)
		os.Exit(1)
	}

	slog.Info("Import finished", "rows", result.TotalRows, "applied", result.Applied, "skipped", result.Skipped)
	for _, msg := range result.Errors {
		slog.Warn("Row skipped", "detail", msg)
	}
}
