// Package app wires the configured store, payment gateway and notifier
// into a lottery service. The binaries under cmd share it.
package app

import (
	"context"
	"fmt"

	"github.com/ArowuTest/jackpot-ledger/internal/config"
	"github.com/ArowuTest/jackpot-ledger/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/jackpot-ledger/internal/repositories/mongodb"
	"github.com/ArowuTest/jackpot-ledger/internal/services"
	"github.com/ArowuTest/jackpot-ledger/pkg/mongodb"
	"github.com/ArowuTest/jackpot-ledger/pkg/payments"
	"github.com/ArowuTest/jackpot-ledger/pkg/webhook"
	"golang.org/x/exp/slog"
)

// Runtime is a wired service and what it needs to shut down
type Runtime struct {
	Repos    services.Repositories
	Payments *payments.Client
	Service  *services.LotteryServiceImpl
	closeFn  func(context.Context) error
}

// OpenRepositories returns MongoDB repositories when MongoDB is enabled and
// in-memory ones otherwise. The returned function releases the store.
func OpenRepositories(ctx context.Context, cfg config.MongoDBConfig) (services.Repositories, func(context.Context) error, error) {
	if !cfg.Enabled {
		slog.Warn("MongoDB disabled, the ledger is kept in memory")
		store := memory.NewStore()
		return services.Repositories{
			Ledgers:      memory.NewLedgerRepository(store),
			Participants: memory.NewParticipantRepository(store),
			Draws:        memory.NewDrawRepository(store),
			Events:       memory.NewEventRepository(store),
			Transactor:   store,
		}, func(context.Context) error { return nil }, nil
	}

	client, err := mongodb.NewClient(ctx, cfg.URI)
	if err != nil {
		return services.Repositories{}, nil, err
	}
	db := client.Database(cfg.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return services.Repositories{}, nil, err
	}
	slog.Info("Connected to MongoDB", "database", cfg.Database)

	return services.Repositories{
		Ledgers:      mongorepo.NewLedgerRepository(db),
		Participants: mongorepo.NewParticipantRepository(db),
		Draws:        mongorepo.NewDrawRepository(db),
		Events:       mongorepo.NewEventRepository(db),
		Transactor:   client,
	}, client.Disconnect, nil
}

// Notifier returns the webhook publisher when a URL is configured, always
// paired with the log notifier.
func Notifier(cfg config.WebhookConfig) services.EventNotifier {
	if cfg.URL == "" {
		return services.LogNotifier{}
	}
	return services.MultiNotifier{services.LogNotifier{}, webhook.NewPublisher(cfg.URL, cfg.Secret, cfg.Timeout)}
}

// New builds the runtime for cfg
func New(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	repos, closeFn, err := OpenRepositories(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	gateway := payments.NewClient(cfg.Payments.BaseURL, cfg.Payments.APIKey, cfg.Payments.MockAPI, cfg.Payments.MockBalance)
	svc := services.NewLotteryService(repos, gateway,
		services.WithTicketUnit(cfg.Lottery.TicketUnit),
		services.WithNotifier(Notifier(cfg.Webhook)),
	)

	return &Runtime{Repos: repos, Payments: gateway, Service: svc, closeFn: closeFn}, nil
}

// EnsureInitialized creates the ledger from config when AutoInitialize is
// set and no ledger exists yet.
func (r *Runtime) EnsureInitialized(ctx context.Context, cfg config.LotteryConfig) error {
	if !cfg.AutoInitialize {
		return nil
	}
	if _, err := r.Service.GetLotteryState(ctx); err == nil {
		return nil
	}

	admin := cfg.AdminAuthority
	_, err := r.Service.Initialize(ctx, admin, services.InitializeRequest{
		EligibilityTokenReference: cfg.EligibilityTokenReference,
		AdminAuthority:            admin,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}
	return nil
}

// Close releases the store
func (r *Runtime) Close(ctx context.Context) error {
	return r.closeFn(ctx)
}
