package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/jackpot-ledger/api/routes"
	"github.com/ArowuTest/jackpot-ledger/internal/app"
	"github.com/ArowuTest/jackpot-ledger/internal/config"
	"github.com/ArowuTest/jackpot-ledger/internal/handlers"
	"github.com/ArowuTest/jackpot-ledger/internal/scheduler"
	"github.com/ArowuTest/jackpot-ledger/internal/selector"
	"github.com/ArowuTest/jackpot-ledger/pkg/jwt"
	"github.com/ArowuTest/jackpot-ledger/pkg/logging"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if _, err := logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat); err != nil {
		slog.Error("Failed to configure logging", "error", err)
		os.Exit(1)
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	rt, err := app.New(startCtx, cfg)
	cancel()
	if err != nil {
		slog.Error("Failed to start", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.Close(closeCtx); err != nil {
			slog.Error("Error closing store", "error", err)
		}
	}()

	if err := rt.EnsureInitialized(ctx, cfg.Lottery); err != nil {
		slog.Error("Failed to initialize ledger", "error", err)
		os.Exit(1)
	}

	tokens, err := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiresIn)
	if err != nil {
		slog.Error("Failed to create token service", "error", err)
		os.Exit(1)
	}

	winnerSelector := selector.NewWeightedSelector(rt.Repos.Participants)
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(rt.Service, winnerSelector, cfg.Scheduler.Operator, scheduler.Config{
			Interval:   cfg.Scheduler.Interval,
			Hourly:     cfg.Scheduler.Hourly,
			Daily:      cfg.Scheduler.Daily,
			DailyHour:  cfg.Scheduler.DailyHour,
			MinJackpot: cfg.Scheduler.MinJackpot,
		})
		go func() {
			if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Scheduler exited", "error", err)
			}
		}()
	}

	router := routes.SetupRouter(routes.HandlerDependencies{
		LotteryHandler: handlers.NewLotteryHandler(rt.Service, winnerSelector),
		Tokens:         tokens,
		AllowedHosts:   cfg.Server.AllowedHosts,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in a goroutine so that it doesn't block
	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}
